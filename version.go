package tokens

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-tokens/pkg/storage"
)

// Version is a major.minor.patch business unit version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "x.y.z" where every part is a non-negative integer.
func ParseVersion(value string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(value), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w %q: expected x.y.z", ErrInvalidVersion, value)
	}
	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w %q: part %q is not a number", ErrInvalidVersion, value, part)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// BumpPatch returns v with the patch number incremented.
func (v Version) BumpPatch() Version {
	v.Patch++
	return v
}

// VersionPath returns the version.json path of a business unit.
func VersionPath(fs storage.Storage, tokensRoot, bu string) string {
	return fs.Join(tokensRoot, bu, VersionFile)
}

// ReadVersion reads the "version" key of {bu}/version.json. ok is false
// when the file or the key is missing.
func ReadVersion(ctx context.Context, fs storage.Storage, tokensRoot, bu string) (version string, ok bool, err error) {
	path := VersionPath(fs, tokensRoot, bu)
	data, err := fs.ReadFile(ctx, path)
	if err != nil {
		if storage.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, &FileError{Op: "read", Path: path, Err: err}
	}
	doc, err := decodeJSON(data)
	if err != nil {
		return "", false, &SyntaxError{File: path, Err: err}
	}
	obj, isObj := doc.(*Object)
	if !isObj {
		return "", false, &SyntaxError{File: path, Err: errNotObject(doc)}
	}
	raw, found := obj.Get("version")
	s, isString := raw.(string)
	if !found || !isString {
		return "", false, nil
	}
	return s, true, nil
}

// WriteVersion stores version in {bu}/version.json, keeping any other keys
// already present in the file.
func WriteVersion(ctx context.Context, fs storage.Storage, tokensRoot, bu string, version Version) error {
	path := VersionPath(fs, tokensRoot, bu)
	obj := NewObject()
	data, err := fs.ReadFile(ctx, path)
	switch {
	case err == nil:
		doc, decodeErr := decodeJSON(data)
		if existing, ok := doc.(*Object); decodeErr == nil && ok {
			obj = existing
		}
	case !storage.IsNotExist(err):
		return &FileError{Op: "read", Path: path, Err: err}
	}
	obj.Set("version", version.String())
	out, err := encodeIndented(obj)
	if err != nil {
		return err
	}
	out = append(out, '\n')
	if err := fs.WriteFile(ctx, path, out); err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// BumpVersion increments the patch number of a business unit version and
// writes it back. It returns the new version.
func BumpVersion(ctx context.Context, fs storage.Storage, tokensRoot, bu string) (Version, error) {
	current, ok, err := ReadVersion(ctx, fs, tokensRoot, bu)
	if err != nil {
		return Version{}, err
	}
	if !ok {
		return Version{}, fmt.Errorf("%w: %s has no version", ErrInvalidVersion, VersionPath(fs, tokensRoot, bu))
	}
	parsed, err := ParseVersion(current)
	if err != nil {
		return Version{}, err
	}
	next := parsed.BumpPatch()
	if err := WriteVersion(ctx, fs, tokensRoot, bu, next); err != nil {
		return Version{}, err
	}
	return next, nil
}
