package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
)

// FileStore reads documents from a file system, used for local catalog copies.
type FileStore struct {
	fs afero.Fs
}

// NewFileStore returns a store reading from fsys.
func NewFileStore(fsys afero.Fs) *FileStore {
	return &FileStore{fs: fsys}
}

// Get implements CatalogStore, the access options do not apply to local files.
func (s *FileStore) Get(ctx context.Context, href string, _ AccessOptions, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := strings.TrimPrefix(href, "file://")

	f, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}
