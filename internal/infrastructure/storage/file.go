package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/marketplace/storefront/internal/domain/cart"
)

const fileExt = ".json"

// FileStorage keeps one file per key on a billy filesystem.
// Writes go to a temp file that is renamed over the target, so a reader
// never sees a half-written value.
type FileStorage struct {
	fs billy.Filesystem
	mu sync.Mutex
}

// NewFileStorage creates a storage slot on the given filesystem
func NewFileStorage(fs billy.Filesystem) *FileStorage {
	return &FileStorage{fs: fs}
}

// NewOSFileStorage creates a storage slot rooted at dir on the local disk
func NewOSFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create dir %q: %w", dir, err)
	}
	return NewFileStorage(osfs.New(dir)), nil
}

// Get returns the value stored under key
func (s *FileStorage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := util.ReadFile(s.fs, fileName(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: read %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set stores value under key
func (s *FileStorage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := fileName(key)
	tmp, err := util.TempFile(s.fs, ".", "."+name+"-")
	if err != nil {
		return fmt.Errorf("storage: create temp for %q: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write([]byte(value)); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("storage: close %q: %w", key, err)
	}
	if err := s.fs.Rename(tmpName, name); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("storage: rename %q: %w", key, err)
	}
	return nil
}

// Remove deletes key; removing a missing key is not an error
func (s *FileStorage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(fileName(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove %q: %w", key, err)
	}
	return nil
}

// fileName maps a key to a flat, path-safe file name
func fileName(key string) string {
	return url.PathEscape(key) + fileExt
}

var _ cart.Storage = (*FileStorage)(nil)
