package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore backs the Store interface with a Supabase storage bucket.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

func NewSupabaseStore(projectURL, serviceKey, bucket string) *SupabaseStore {
	return &SupabaseStore{
		client: storage_go.NewClient(strings.TrimRight(projectURL, "/")+"/storage/v1", serviceKey, nil),
		bucket: bucket,
	}
}

func (s *SupabaseStore) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := false
	cacheControl := "3600"

	_, err := s.client.UploadFile(s.bucket, path, r, storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return fmt.Errorf("supabase upload: %w", err)
	}
	return nil
}

// isDuplicate matches the storage API's 409 "resource already exists"
// responses, which storage-go surfaces only as an error string.
func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}

func (s *SupabaseStore) List(ctx context.Context, prefix string, limit int) ([]Object, error) {
	objs, err := s.client.ListFiles(s.bucket, strings.TrimSuffix(prefix, "/"), storage_go.FileSearchOptions{
		Limit: limit,
		SortByOptions: storage_go.SortBy{
			Column: "created_at",
			Order:  "desc",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("supabase list: %w", err)
	}

	dir := prefix
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	out := make([]Object, 0, len(objs))
	for _, o := range objs {
		created, _ := time.Parse(time.RFC3339, o.CreatedAt)
		obj := Object{
			Path:        dir + o.Name,
			Name:        o.Name,
			ContentType: "application/octet-stream",
			CreatedAt:   created,
		}
		// Size and mimetype ride along in the object's metadata blob.
		if meta, ok := o.Metadata.(map[string]interface{}); ok {
			if size, ok := meta["size"].(float64); ok {
				obj.Size = int64(size)
			}
			if mime, ok := meta["mimetype"].(string); ok && mime != "" {
				obj.ContentType = mime
			}
		}
		out = append(out, obj)
	}
	return out, nil
}

func (s *SupabaseStore) Remove(ctx context.Context, paths []string) error {
	if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("supabase remove: %w", err)
	}
	return nil
}

func (s *SupabaseStore) PublicURL(path string) string {
	return s.client.GetPublicUrl(s.bucket, path).SignedURL
}

// Exists lists the object's directory and scans for it; the storage API has
// no head-object endpoint.
func (s *SupabaseStore) Exists(ctx context.Context, path string) (bool, error) {
	dir, name := splitPath(path)
	objs, err := s.List(ctx, dir, 0)
	if err != nil {
		return false, err
	}
	for _, o := range objs {
		if o.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func splitPath(path string) (dir, name string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
