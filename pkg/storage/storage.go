// Package storage abstracts the filesystem a token workspace lives on.
//
// The engine only talks to Storage, so the same load and save code runs
// against the host filesystem (OS), an in-memory tree (MemoryStorage) used by
// tests and examples, or a single bbolt file (BoltStorage).
//
// Missing paths are reported with errors that match fs.ErrNotExist.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// FileInfo describes a path.
type FileInfo struct {
	IsDir  bool
	IsFile bool
}

// Storage is the file access contract used by the token engine. Implementations
// must be safe for concurrent use.
type Storage interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// WriteFile replaces the content at path, creating parent directories.
	WriteFile(ctx context.Context, path string, data []byte) error
	Exists(ctx context.Context, path string) (bool, error)
	// ListDir returns the sorted names of the direct children of path.
	ListDir(ctx context.Context, path string) ([]string, error)
	Join(elem ...string) string
	Stat(ctx context.Context, path string) (FileInfo, error)
}

// Absolute is implemented by storages that can anchor a relative path, for
// example against the process working directory.
type Absolute interface {
	Abs(path string) (string, error)
}

// Abs returns p anchored by s when s implements Absolute. Otherwise p is
// only cleaned with s.Join.
func Abs(s Storage, p string) (string, error) {
	if a, ok := s.(Absolute); ok {
		return a.Abs(p)
	}
	return s.Join(p), nil
}

// ErrIsDirectory is returned when a file operation targets a directory.
var ErrIsDirectory = errors.New("storage: path is a directory")

func notExist(op, path string) error {
	return &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
}

// IsNotExist reports whether err signals a missing path.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Mirror copies every file below root from src to dst, keeping relative
// paths. It returns the copied paths as seen by dst, sorted.
func Mirror(ctx context.Context, dst, src Storage, srcRoot, dstRoot string) ([]string, error) {
	var copied []string
	var walk func(rel []string) error
	walk = func(rel []string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		from := src.Join(append([]string{srcRoot}, rel...)...)
		info, err := src.Stat(ctx, from)
		if err != nil {
			return err
		}
		if info.IsFile {
			data, err := src.ReadFile(ctx, from)
			if err != nil {
				return err
			}
			to := dst.Join(append([]string{dstRoot}, rel...)...)
			if err := dst.WriteFile(ctx, to, data); err != nil {
				return fmt.Errorf("storage: mirror %s: %w", to, err)
			}
			copied = append(copied, to)
			return nil
		}
		names, err := src.ListDir(ctx, from)
		if err != nil {
			return err
		}
		for _, name := range names {
			next := append(append([]string{}, rel...), name)
			if err := walk(next); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(nil); err != nil {
		return copied, err
	}
	sort.Strings(copied)
	return copied, nil
}

// childNames returns the sorted, de-duplicated first path segment of every
// key below dir. Keys use forward slashes.
func childNames(keys []string, dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	if dir == "/" {
		prefix = "/"
	}
	seen := map[string]struct{}{}
	var names []string
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		name, _, _ := strings.Cut(rest, "/")
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
