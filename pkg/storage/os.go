package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// OS is a Storage backed by the host filesystem.
type OS struct {
	// FileMode is used for written files. Zero means 0o644.
	FileMode fs.FileMode
}

// NewOS returns a host filesystem storage.
func NewOS() *OS {
	return &OS{FileMode: 0o644}
}

func (s *OS) mode() fs.FileMode {
	if s == nil || s.FileMode == 0 {
		return 0o644
	}
	return s.FileMode
}

func (s *OS) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (s *OS) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, s.mode())
}

func (s *OS) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *OS) ListDir(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *OS) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// Abs resolves path against the working directory.
func (s *OS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (s *OS) Stat(ctx context.Context, path string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{IsDir: info.IsDir(), IsFile: info.Mode().IsRegular()}, nil
}
