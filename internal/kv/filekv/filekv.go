package filekv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// File-backed medium. One human-readable file per key inside a directory,
// replaced atomically on every write.

const (
	fileExt   = ".json"
	filePerms = 0o644
	dirPerms  = 0o755
)

// Store keeps each key in its own file under Dir.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("filekv: empty directory")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("abs %q: %w", dir, err)
	}
	return &Store{Dir: abs}, nil
}

// path maps a key to a file name. Keys are escaped so separators or dots in
// a key can never leave Dir.
func (s *Store) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("filekv: empty key")
	}
	name := url.PathEscape(key)
	if name == "." || name == ".." {
		name = strings.ReplaceAll(name, ".", "%2E")
	}
	return filepath.Join(s.Dir, name+fileExt), nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read file: %w", err)
	}
	return b, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, dirPerms); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := atomic.WriteFile(p, bytes.NewReader(value)); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	// atomic.WriteFile keeps the temp file's mode for new files
	if err := os.Chmod(p, filePerms); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	return nil
}
