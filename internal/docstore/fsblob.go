package docstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirBlobStore writes blobs under a local directory and returns file
// URLs, mirroring the public-URL contract of a hosted bucket.
type DirBlobStore struct {
	Root string
}

// NewDirBlobStore creates the root directory if needed.
func NewDirBlobStore(root string) (*DirBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir %q: %w", root, err)
	}
	return &DirBlobStore{Root: root}, nil
}

// Put implements BlobStore.
func (b *DirBlobStore) Put(data []byte, path string) (string, error) {
	full := filepath.Join(b.Root, filepath.Clean(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create blob path %q: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %q: %w", path, err)
	}
	return "file://" + full, nil
}
