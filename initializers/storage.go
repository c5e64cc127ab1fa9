package initializers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/sharevault/sharevault-backend/storage"
)

const defaultBucket = "user-files"

// NewBlobStore builds the configured blob-store driver. Supabase storage is
// the default; set STORAGE_DRIVER=s3 for S3.
func NewBlobStore(ctx context.Context) (storage.Store, error) {
	driver := os.Getenv("STORAGE_DRIVER")
	if driver == "" {
		driver = "supabase"
	}

	switch driver {
	case "supabase":
		url := os.Getenv("SUPABASE_URL")
		key := os.Getenv("SUPABASE_KEY")
		if url == "" || key == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY must be set")
		}
		bucket := os.Getenv("SUPABASE_BUCKET")
		if bucket == "" {
			bucket = defaultBucket
		}
		log.Printf("✅ Using Supabase storage bucket %q", bucket)
		return storage.NewSupabaseStore(url, key, bucket), nil

	case "s3":
		cfg, err := config.LoadDefaultConfig(ctx,
			config.WithRegion(os.Getenv("AWS_REGION")),
		)
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
		}
		bucket := os.Getenv("AWS_BUCKET_NAME")
		if bucket == "" {
			return nil, fmt.Errorf("AWS_BUCKET_NAME must be set")
		}
		log.Printf("✅ Using S3 bucket %q", bucket)
		return storage.NewS3Store(cfg, bucket), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
