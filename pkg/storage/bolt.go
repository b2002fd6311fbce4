package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketFiles = []byte("files")
	bucketDirs  = []byte("dirs")
)

// BoltStorage keeps a whole token workspace in a single bbolt database file.
// Each file is a key in the "files" bucket holding its full content; empty
// directories are recorded in the "dirs" bucket. Paths use forward slashes.
type BoltStorage struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the database at file.
func OpenBolt(file string) (*BoltStorage, error) {
	db, err := bolt.Open(file, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("storage: open bolt %s: %w", file, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketFiles, bucketDirs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: init bolt %s: %w", file, err)
	}
	return &BoltStorage{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

// MkdirAll records an explicit, possibly empty, directory.
func (s *BoltStorage) MkdirAll(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDirs)
		for d := cleanPath(dir); d != "/"; d = path.Dir(d) {
			if err := b.Put([]byte(d), []byte("d")); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStorage) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := cleanPath(p)
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v, ok := boltGet(tx.Bucket(bucketFiles), key)
		if !ok {
			if isBoltDir(tx, key) {
				return ErrIsDirectory
			}
			return notExist("read", p)
		}
		// Values are only valid for the life of the transaction.
		out = append([]byte{}, v...)
		return nil
	})
	return out, err
}

func (s *BoltStorage) WriteFile(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := cleanPath(p)
	return s.db.Update(func(tx *bolt.Tx) error {
		if isBoltDir(tx, key) {
			return ErrIsDirectory
		}
		return tx.Bucket(bucketFiles).Put([]byte(key), append([]byte{}, data...))
	})
}

func (s *BoltStorage) Exists(ctx context.Context, p string) (bool, error) {
	info, err := s.Stat(ctx, p)
	if err != nil {
		if IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir || info.IsFile, nil
}

func (s *BoltStorage) ListDir(ctx context.Context, p string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := cleanPath(p)
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		if !isBoltDir(tx, key) {
			return notExist("readdir", p)
		}
		prefix := []byte(strings.TrimSuffix(key, "/") + "/")
		var keys []string
		for _, bucket := range [][]byte{bucketFiles, bucketDirs} {
			c := tx.Bucket(bucket).Cursor()
			for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
				keys = append(keys, string(k))
			}
		}
		names = childNames(keys, key)
		return nil
	})
	return names, err
}

func (s *BoltStorage) Join(elem ...string) string {
	return path.Join(elem...)
}

// Abs roots p at "/".
func (s *BoltStorage) Abs(p string) (string, error) {
	return cleanPath(p), nil
}

func (s *BoltStorage) Stat(ctx context.Context, p string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	key := cleanPath(p)
	var info FileInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		if _, ok := boltGet(tx.Bucket(bucketFiles), key); ok {
			info.IsFile = true
			return nil
		}
		if isBoltDir(tx, key) {
			info.IsDir = true
			return nil
		}
		return notExist("stat", p)
	})
	return info, err
}

func isBoltDir(tx *bolt.Tx, key string) bool {
	if key == "/" {
		return true
	}
	if _, ok := boltGet(tx.Bucket(bucketDirs), key); ok {
		return true
	}
	prefix := []byte(key + "/")
	for _, bucket := range [][]byte{bucketFiles, bucketDirs} {
		k, _ := tx.Bucket(bucket).Cursor().Seek(prefix)
		if k != nil && bytes.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// boltGet distinguishes a missing key from an empty value, which Get does not.
func boltGet(b *bolt.Bucket, key string) ([]byte, bool) {
	k, v := b.Cursor().Seek([]byte(key))
	if k == nil || string(k) != key {
		return nil, false
	}
	return v, true
}
