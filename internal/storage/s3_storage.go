package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Storage keeps uploads in a single bucket. Destination directories become
// key prefixes.
type S3Storage struct {
	client *minio.Client
	bucket string
}

var _ Backend = (*S3Storage)(nil)

func NewS3Storage(config *BackendConfig) (*S3Storage, error) {
	if config.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client, err := minio.New(config.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.S3AccessKey, config.S3SecretKey, ""),
		Secure: config.S3UseSSL,
		Region: config.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &S3Storage{
		client: client,
		bucket: config.S3Bucket,
	}, nil
}

// Check only verifies the bucket. Prefixes need no setup.
func (s *S3Storage) Check(ctx context.Context, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket does not exist: %s", s.bucket)
	}
	return nil
}

func (s *S3Storage) Store(ctx context.Context, dir, name string, reader io.Reader, size int64) (string, error) {
	key := objectKey(dir, name)
	if size <= 0 {
		size = -1
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{}); err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func objectKey(dir, name string) string {
	prefix := strings.Trim(strings.ReplaceAll(dir, "\\", "/"), "/")
	return path.Join(prefix, name)
}
