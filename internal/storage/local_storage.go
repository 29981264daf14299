package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const tempFilePattern = ".upload-*"

// LocalStorage writes uploads to directories on the local disk.
type LocalStorage struct{}

var _ Backend = (*LocalStorage)(nil)

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

func (s *LocalStorage) Check(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage directory does not exist: %s", dir)
		}
		return fmt.Errorf("failed to stat storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path is not a directory: %s", dir)
	}

	probe, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("storage directory is not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

// Store copies reader into a temporary file next to its final location and
// renames it into place once the copy has completed.
func (s *LocalStorage) Store(ctx context.Context, dir, name string, reader io.Reader, size int64) (string, error) {
	file, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := file.Name()

	_, err = io.Copy(file, &contextReader{ctx: ctx, reader: reader})
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	fullPath := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	if absPath, err := filepath.Abs(fullPath); err == nil {
		fullPath = absPath
	}
	return fullPath, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}
