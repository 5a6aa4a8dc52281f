package partition

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// SaveDir is the directory under the data root that holds partition files
const SaveDir = "SaveFiles"

// FileStore keeps each partition as <root>/SaveFiles/<name>.json
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: filepath.Join(dir, SaveDir)}
}

// Path returns the file a partition is stored in
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name)+".json")
}

// Load reads a partition file
func (s *FileStore) Load(ctx context.Context, name string) (Object, error) {
	if err := ValidateName(name); err != nil {
		return Object{}, err
	}
	path := s.Path(name)

	info, err := os.Stat(path)
	if err != nil {
		return Object{}, notFound(name, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Object{}, notFound(name, err)
	}
	return Object{Data: data, ModTime: info.ModTime()}, nil
}

// Stat returns a partition file's modification time
func (s *FileStore) Stat(ctx context.Context, name string) (time.Time, error) {
	if err := ValidateName(name); err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return time.Time{}, notFound(name, err)
	}
	return info.ModTime(), nil
}

// Save writes to a temp file in the target directory, syncs it and renames
// it over the partition file
func (s *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.Path(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	committed = true
	return nil
}

func notFound(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fmt.Errorf("partition %s: %w", name, err)
}
