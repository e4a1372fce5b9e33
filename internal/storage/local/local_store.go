package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mederror/internal/domain"
)

// Store reads and writes artifacts on a filesystem. Paths may be plain or
// carry a file:// prefix.
type Store struct {
	fs afero.Fs
}

// NewStore returns a Store over fs. Production callers pass afero.NewOsFs().
func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

func path(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func (s *Store) Read(_ context.Context, uri string) ([]byte, error) {
	p := path(uri)
	data, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, domain.ErrMissingSource)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// Write creates missing parent directories and replaces any existing file.
func (s *Store) Write(_ context.Context, uri string, data []byte, _ string) (string, error) {
	p := path(uri)
	if dir := filepath.Dir(p); dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", p, err)
	}
	return p, nil
}
