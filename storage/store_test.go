package storage

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path, dir, name string
	}{
		{"user-1/1714_report.pdf", "user-1", "1714_report.pdf"},
		{"bare.txt", "", "bare.txt"},
		{"a/b/c.txt", "a/b", "c.txt"},
	}
	for _, tt := range tests {
		dir, name := splitPath(tt.path)
		assert.Equal(t, tt.dir, dir)
		assert.Equal(t, tt.name, name)
	}
}

func TestS3PublicURL(t *testing.T) {
	store := NewS3Store(aws.Config{Region: "eu-west-1"}, "user-files")

	url := store.PublicURL("user-1/1714_report.pdf")
	assert.Equal(t, "https://user-files.s3.eu-west-1.amazonaws.com/user-1/1714_report.pdf", url)
}

func TestSupabasePublicURL(t *testing.T) {
	store := NewSupabaseStore("https://proj.supabase.co", "service-key", "user-files")

	url := store.PublicURL("user-1/1714_report.pdf")
	assert.Contains(t, url, "user-files")
	assert.Contains(t, url, "user-1/1714_report.pdf")
}
