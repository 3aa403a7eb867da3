// Package receipts uploads receipt files to object storage in the
// background and records the resulting reference on the expense.
package receipts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// BlobStore writes an object and returns a reference to it.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// LocalStore keeps receipts under a directory on the local filesystem.
// References are file:// URLs.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receipts directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

// Put writes data to root/key.
func (s *LocalStore) Put(ctx context.Context, key, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create receipt directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}
	return "file://" + filepath.ToSlash(dst), nil
}
