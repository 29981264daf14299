package storage

import (
	"context"
	"fmt"
	"io"
)

// Backend persists uploaded files. dir is the destination a Strategy resolved
// for the upload; name is the generated file name inside it.
type Backend interface {
	// Check verifies that dir is usable as a destination. It never creates it.
	Check(ctx context.Context, dir string) error
	// Store consumes reader completely and returns the location of the stored
	// file. A failed Store leaves nothing under name.
	Store(ctx context.Context, dir, name string, reader io.Reader, size int64) (string, error)
}

type BackendType string

const (
	BackendTypeLocal BackendType = "local"
	BackendTypeS3    BackendType = "s3"
)

type BackendConfig struct {
	Type        BackendType
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3UseSSL    bool
}

func NewBackend(config *BackendConfig) (Backend, error) {
	switch config.Type {
	case BackendTypeS3:
		return NewS3Storage(config)
	case BackendTypeLocal, "":
		return NewLocalStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", config.Type)
	}
}
