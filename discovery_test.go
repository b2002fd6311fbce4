package tokens

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tokens/pkg/storage"
)

func discoveryStore() *storage.MemoryStorage {
	return storage.NewMemoryStorageFromFiles(map[string]string{
		"/repo/tokens/_core/colors.json":     `{}`,
		"/repo/tokens/_core/space.json":      `{}`,
		"/repo/tokens/_core/notes.md":        `ignored`,
		"/repo/tokens/_brand/base.json":      `{}`,
		"/repo/tokens/acme/tokens.json":      `{}`,
		"/repo/tokens/beta/tokens.json":      `{}`,
		"/repo/tokens/bu-display-names.json": `{"acme": "Acme Corp", "beta": 3}`,
		"/repo/tokens/README.md":             `docs`,
		"/repo/packages/app/src/index.ts":    `code`,
		"/other/place/file.txt":              `x`,
	})
}

func TestDiscoverTokenRootWalksUpward(t *testing.T) {
	ctx := context.Background()
	store := discoveryStore()

	root, err := DiscoverTokenRoot(ctx, store, "/repo/packages/app/src")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if root != "/repo/tokens" {
		t.Fatalf("unexpected root %q", root)
	}
	if _, err := DiscoverTokenRoot(ctx, store, "/other/place"); !errors.Is(err, ErrTokenRootNotFound) {
		t.Fatalf("expected ErrTokenRootNotFound, got %v", err)
	}
}

func TestDiscoverTokenRootFromRelativeStart(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "tokens"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(base, "work", "sub", "dir"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(filepath.Join(base, "work"))

	root, err := DiscoverTokenRoot(context.Background(), storage.NewOS(), filepath.Join("sub", "dir"))
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if !filepath.IsAbs(root) || filepath.Base(root) != "tokens" {
		t.Fatalf("unexpected root %q", root)
	}
	want, err := os.Stat(filepath.Join(base, "tokens"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.Stat(root)
	if err != nil {
		t.Fatalf("stat %s: %v", root, err)
	}
	if !os.SameFile(want, got) {
		t.Fatalf("expected %s, got %s", filepath.Join(base, "tokens"), root)
	}
}

func TestDiscoverTokenRootRelativeInMemory(t *testing.T) {
	root, err := DiscoverTokenRoot(context.Background(), discoveryStore(), "repo/packages/app")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if root != "/repo/tokens" {
		t.Fatalf("unexpected root %q", root)
	}
}

func TestDiscoverBusinessUnitsAndCore(t *testing.T) {
	ctx := context.Background()
	store := discoveryStore()

	units, err := DiscoverBusinessUnits(ctx, store, "/repo/tokens")
	if err != nil {
		t.Fatalf("units: %v", err)
	}
	want := []BusinessUnit{
		{Name: "acme", Path: "/repo/tokens/acme"},
		{Name: "beta", Path: "/repo/tokens/beta"},
	}
	if diff := cmp.Diff(want, units); diff != "" {
		t.Fatalf("units mismatch (-want +got):\n%s", diff)
	}

	cores, err := DiscoverCore(ctx, store, "/repo/tokens")
	if err != nil {
		t.Fatalf("core: %v", err)
	}
	wantCore := []CoreEntry{
		{Name: "_brand", Path: "/repo/tokens/_brand", Files: []string{"base.json"}},
		{Name: "_core", Path: "/repo/tokens/_core", Files: []string{"colors.json", "space.json"}},
	}
	if diff := cmp.Diff(wantCore, cores); diff != "" {
		t.Fatalf("core mismatch (-want +got):\n%s", diff)
	}
	wantFiles := []string{
		"/repo/tokens/_brand/base.json",
		"/repo/tokens/_core/colors.json",
		"/repo/tokens/_core/space.json",
	}
	if diff := cmp.Diff(wantFiles, coreFiles(store, cores)); diff != "" {
		t.Fatalf("core files mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDisplayNames(t *testing.T) {
	ctx := context.Background()
	names := LoadDisplayNames(ctx, discoveryStore(), "/repo/tokens")
	if diff := cmp.Diff(map[string]string{"acme": "Acme Corp"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if got := (BusinessUnit{Name: "beta"}).DisplayName(names); got != "beta" {
		t.Fatalf("expected fallback to name, got %q", got)
	}
	if got := LoadDisplayNames(ctx, storage.NewMemoryStorage(), "/none"); len(got) != 0 {
		t.Fatalf("missing file should yield no names, got %v", got)
	}
}

type stubPicker struct {
	path string
	ok   bool
}

func (p stubPicker) PickDirectory(context.Context) (string, bool, error) {
	return p.path, p.ok, nil
}

func TestPickTokenRoot(t *testing.T) {
	ctx := context.Background()
	root, ok, err := PickTokenRoot(ctx, discoveryStore(), stubPicker{path: "/repo", ok: true})
	if err != nil || !ok || root != "/repo/tokens" {
		t.Fatalf("unexpected pick result %q %v %v", root, ok, err)
	}
	if _, ok, err := PickTokenRoot(ctx, discoveryStore(), stubPicker{}); ok || err != nil {
		t.Fatalf("cancelled pick should report ok=false without error")
	}
}
