package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-tokens/pkg/storage"
)

// Workspace layout names.
const (
	TokensDirName    = "tokens"
	BUTokensFile     = "tokens.json"
	DisplayNamesFile = "bu-display-names.json"
	VersionFile      = "version.json"
	// DefaultCorePrefix marks core directories under the tokens root.
	DefaultCorePrefix = "_"
)

// BusinessUnit is a directory under the tokens root holding a tokens.json
// override document.
type BusinessUnit struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// CoreEntry is a core directory and the sorted .json files it contains.
type CoreEntry struct {
	Name  string   `json:"name"`
	Path  string   `json:"path"`
	Files []string `json:"files"`
}

// DirectoryPicker asks the user for a directory. ok is false when the user
// cancelled.
type DirectoryPicker interface {
	PickDirectory(ctx context.Context) (path string, ok bool, err error)
}

// DiscoverTokenRoot walks upward from start looking for a "tokens"
// directory. A relative start is first made absolute through the storage
// (see storage.Abs), so the walk can leave the working directory. It returns
// ErrTokenRootNotFound once the walk reaches the top.
func DiscoverTokenRoot(ctx context.Context, fs storage.Storage, start string) (string, error) {
	current, err := storage.Abs(fs, start)
	if err != nil {
		return "", &FileError{Op: "abs", Path: start, Err: err}
	}
	for {
		candidate := fs.Join(current, TokensDirName)
		info, err := fs.Stat(ctx, candidate)
		switch {
		case err == nil && info.IsDir:
			return candidate, nil
		case err != nil && !storage.IsNotExist(err):
			return "", &FileError{Op: "stat", Path: candidate, Err: err}
		}

		parent := fs.Join(current, "..")
		if parent == current || strings.HasPrefix(parent, "..") {
			return "", fmt.Errorf("%w starting from %s", ErrTokenRootNotFound, start)
		}
		current = parent
	}
}

// DiscoverBusinessUnits lists the business unit directories of tokensRoot,
// sorted by name.
func DiscoverBusinessUnits(ctx context.Context, fs storage.Storage, tokensRoot string) ([]BusinessUnit, error) {
	return discoverBusinessUnits(ctx, fs, tokensRoot, DefaultCorePrefix)
}

// DiscoverCore lists the core directories of tokensRoot with their .json
// files, sorted by name.
func DiscoverCore(ctx context.Context, fs storage.Storage, tokensRoot string) ([]CoreEntry, error) {
	return discoverCore(ctx, fs, tokensRoot, DefaultCorePrefix)
}

func discoverBusinessUnits(ctx context.Context, fs storage.Storage, tokensRoot, corePrefix string) ([]BusinessUnit, error) {
	entries, err := fs.ListDir(ctx, tokensRoot)
	if err != nil {
		return nil, &FileError{Op: "list", Path: tokensRoot, Err: err}
	}
	units := []BusinessUnit{}
	for _, entry := range entries {
		if strings.HasPrefix(entry, corePrefix) {
			continue
		}
		entryPath := fs.Join(tokensRoot, entry)
		info, err := fs.Stat(ctx, entryPath)
		if err != nil {
			return nil, &FileError{Op: "stat", Path: entryPath, Err: err}
		}
		if info.IsDir {
			units = append(units, BusinessUnit{Name: entry, Path: entryPath})
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Name < units[j].Name })
	return units, nil
}

func discoverCore(ctx context.Context, fs storage.Storage, tokensRoot, corePrefix string) ([]CoreEntry, error) {
	entries, err := fs.ListDir(ctx, tokensRoot)
	if err != nil {
		return nil, &FileError{Op: "list", Path: tokensRoot, Err: err}
	}
	cores := []CoreEntry{}
	for _, entry := range entries {
		if !strings.HasPrefix(entry, corePrefix) {
			continue
		}
		entryPath := fs.Join(tokensRoot, entry)
		info, err := fs.Stat(ctx, entryPath)
		if err != nil {
			return nil, &FileError{Op: "stat", Path: entryPath, Err: err}
		}
		if !info.IsDir {
			continue
		}
		names, err := fs.ListDir(ctx, entryPath)
		if err != nil {
			return nil, &FileError{Op: "list", Path: entryPath, Err: err}
		}
		files := []string{}
		for _, name := range names {
			if strings.HasSuffix(name, ".json") {
				files = append(files, name)
			}
		}
		sort.Strings(files)
		cores = append(cores, CoreEntry{Name: entry, Path: entryPath, Files: files})
	}
	sort.Slice(cores, func(i, j int) bool { return cores[i].Name < cores[j].Name })
	return cores, nil
}

// coreFiles returns the full paths of every core file, sorted.
func coreFiles(fs storage.Storage, cores []CoreEntry) []string {
	var files []string
	for _, entry := range cores {
		for _, file := range entry.Files {
			files = append(files, fs.Join(entry.Path, file))
		}
	}
	sort.Strings(files)
	return files
}

// LoadDisplayNames reads bu-display-names.json from tokensRoot. Only string
// values are kept. A missing or unreadable file yields an empty map.
func LoadDisplayNames(ctx context.Context, fs storage.Storage, tokensRoot string) map[string]string {
	names := map[string]string{}
	data, err := fs.ReadFile(ctx, fs.Join(tokensRoot, DisplayNamesFile))
	if err != nil {
		return names
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return names
	}
	for key, value := range raw {
		if s, ok := value.(string); ok {
			names[key] = s
		}
	}
	return names
}

// DisplayName returns the configured display name of unit, or its name.
func (u BusinessUnit) DisplayName(names map[string]string) string {
	if name, ok := names[u.Name]; ok && name != "" {
		return name
	}
	return u.Name
}

// PickTokenRoot asks picker for a folder and discovers the tokens directory
// from it. ok is false when the user cancelled.
func PickTokenRoot(ctx context.Context, fs storage.Storage, picker DirectoryPicker) (root string, ok bool, err error) {
	folder, ok, err := picker.PickDirectory(ctx)
	if err != nil || !ok {
		return "", ok, err
	}
	root, err = DiscoverTokenRoot(ctx, fs, folder)
	if err != nil {
		return "", false, err
	}
	return root, true, nil
}
