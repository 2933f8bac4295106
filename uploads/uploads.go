// Package uploads stores user-submitted images on the local filesystem under
// generated collision-resistant names. Files are served statically by the
// router; nothing here is transactional with the document store.
package uploads

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("file is not an image")
)

// Limits applied by the handlers, in bytes.
const (
	MaxAvatarSize    = 600_000
	MaxThumbnailSize = 2_000_000
)

type Store struct {
	dir string
}

// New creates the uploads directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes the payload under a new name derived from the original one:
// base name + random uuid + original extension. Payloads over the limit or
// that don't sniff as an image are rejected.
func (s *Store) Save(data []byte, originalName string, limit int64) (string, error) {
	if int64(len(data)) > limit {
		return "", ErrTooLarge
	}
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return "", ErrUnsupportedType
	}

	base := filepath.Base(originalName)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + uuid.NewString() + ext

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. Callers treat failures as non-fatal.
func (s *Store) Remove(name string) error {
	name = filepath.Base(name) // stored names never contain separators
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("upload %s: %w", name, os.ErrNotExist)
		}
		return err
	}
	return nil
}
