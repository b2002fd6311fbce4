package tokens

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tokens/pkg/storage"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "1.2.3", want: Version{Major: 1, Minor: 2, Patch: 3}},
		{in: " 0.0.9 ", want: Version{Patch: 9}},
		{in: "1.2", wantErr: true},
		{in: "1.2.x", wantErr: true},
		{in: "1.-2.3", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidVersion) {
				t.Errorf("ParseVersion(%q) error = %v, want ErrInvalidVersion", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseVersion(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVersionBumpPatch(t *testing.T) {
	v := Version{Major: 2, Minor: 0, Patch: 9}
	if got := v.BumpPatch().String(); got != "2.0.10" {
		t.Fatalf("BumpPatch = %s", got)
	}
	if v.Patch != 9 {
		t.Fatalf("BumpPatch mutated receiver")
	}
}

func TestBumpVersionKeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	fs := storage.NewMemoryStorageFromFiles(map[string]string{
		"/tokens/acme/version.json": `{"channel": "beta", "version": "1.2.3"}`,
	})

	next, err := BumpVersion(ctx, fs, "/tokens", "acme")
	if err != nil {
		t.Fatalf("BumpVersion: %v", err)
	}
	if next.String() != "1.2.4" {
		t.Fatalf("next = %s", next)
	}

	want := "{\n  \"channel\": \"beta\",\n  \"version\": \"1.2.4\"\n}\n"
	if diff := cmp.Diff(want, fs.Files()["/tokens/acme/version.json"]); diff != "" {
		t.Fatalf("version.json mismatch (-want +got):\n%s", diff)
	}

	got, ok, err := ReadVersion(ctx, fs, "/tokens", "acme")
	if err != nil || !ok || got != "1.2.4" {
		t.Fatalf("ReadVersion = %q, %v, %v", got, ok, err)
	}
}

func TestReadVersionMissing(t *testing.T) {
	ctx := context.Background()
	fs := storage.NewMemoryStorageFromFiles(map[string]string{
		"/tokens/beta/version.json": `{"channel": "beta"}`,
	})

	if _, ok, err := ReadVersion(ctx, fs, "/tokens", "acme"); ok || err != nil {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}
	if _, ok, err := ReadVersion(ctx, fs, "/tokens", "beta"); ok || err != nil {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if _, err := BumpVersion(ctx, fs, "/tokens", "beta"); !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("BumpVersion without version = %v", err)
	}
}

func TestReadVersionSyntaxError(t *testing.T) {
	fs := storage.NewMemoryStorageFromFiles(map[string]string{
		"/tokens/acme/version.json": `{"version": `,
	})
	_, _, err := ReadVersion(context.Background(), fs, "/tokens", "acme")
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if !strings.HasSuffix(syntaxErr.File, "version.json") {
		t.Fatalf("SyntaxError.File = %q", syntaxErr.File)
	}
}

func TestWriteVersionCreatesFile(t *testing.T) {
	ctx := context.Background()
	fs := storage.NewMemoryStorage()
	if err := WriteVersion(ctx, fs, "/tokens", "acme", Version{Major: 1}); err != nil {
		t.Fatalf("WriteVersion: %v", err)
	}
	if got := fs.Files()["/tokens/acme/version.json"]; got != "{\n  \"version\": \"1.0.0\"\n}\n" {
		t.Fatalf("version.json = %q", got)
	}
}
