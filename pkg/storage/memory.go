package storage

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemoryStorage is an in-memory Storage intended for tests and examples.
// Directories exist implicitly when a file lives below them, or explicitly
// via MkdirAll. Paths use forward slashes.
type MemoryStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]struct{}
	// Fail, when set, is consulted before every write. A non-nil result is
	// returned instead of writing, which lets tests inject storage failures.
	Fail func(op, path string) error
}

// NewMemoryStorage returns an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		files: map[string][]byte{},
		dirs:  map[string]struct{}{},
	}
}

// NewMemoryStorageFromFiles seeds a storage with files keyed by path.
func NewMemoryStorageFromFiles(files map[string]string) *MemoryStorage {
	s := NewMemoryStorage()
	for p, content := range files {
		s.files[cleanPath(p)] = []byte(content)
	}
	return s
}

func cleanPath(p string) string {
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}

// MkdirAll records an explicit, possibly empty, directory.
func (s *MemoryStorage) MkdirAll(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for d := cleanPath(dir); d != "/"; d = path.Dir(d) {
		s.dirs[d] = struct{}{}
	}
}

// Files returns a snapshot of every stored file.
func (s *MemoryStorage) Files() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.files))
	for p, data := range s.files {
		out[p] = string(data)
	}
	return out
}

func (s *MemoryStorage) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := cleanPath(p)
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[key]
	if !ok {
		if s.isDirLocked(key) {
			return nil, ErrIsDirectory
		}
		return nil, notExist("read", p)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStorage) WriteFile(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Fail != nil {
		if err := s.Fail("write", p); err != nil {
			return err
		}
	}
	key := cleanPath(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isDirLocked(key) {
		return ErrIsDirectory
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.files[key] = stored
	return nil
}

func (s *MemoryStorage) Exists(ctx context.Context, p string) (bool, error) {
	info, err := s.Stat(ctx, p)
	if err != nil {
		if IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir || info.IsFile, nil
}

func (s *MemoryStorage) ListDir(ctx context.Context, p string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := cleanPath(p)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isDirLocked(key) {
		return nil, notExist("readdir", p)
	}
	return childNames(s.keysLocked(), key), nil
}

func (s *MemoryStorage) Join(elem ...string) string {
	return path.Join(elem...)
}

// Abs roots p at "/".
func (s *MemoryStorage) Abs(p string) (string, error) {
	return cleanPath(p), nil
}

func (s *MemoryStorage) Stat(ctx context.Context, p string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	key := cleanPath(p)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.files[key]; ok {
		return FileInfo{IsFile: true}, nil
	}
	if s.isDirLocked(key) {
		return FileInfo{IsDir: true}, nil
	}
	return FileInfo{}, notExist("stat", p)
}

func (s *MemoryStorage) isDirLocked(key string) bool {
	if key == "/" {
		return true
	}
	if _, ok := s.dirs[key]; ok {
		return true
	}
	prefix := key + "/"
	for p := range s.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (s *MemoryStorage) keysLocked() []string {
	keys := make([]string, 0, len(s.files)+len(s.dirs))
	for p := range s.files {
		keys = append(keys, p)
	}
	for d := range s.dirs {
		keys = append(keys, d)
	}
	sort.Strings(keys)
	return keys
}
