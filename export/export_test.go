package export_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/export"
)

func sampleRows() []tokens.Row {
	return []tokens.Row{
		{Path: "color.base", Type: "color", Value: "#0055ff", Description: "Brand blue"},
		{Path: "color.brand", Type: "color", Value: "{color.base}", Resolved: "#0055ff"},
		{Path: "space.scale", Type: "number", Value: json.Number("1.5")},
		{Path: "flags.dense", Type: "boolean", Value: true},
	}
}

func TestRenderCSS(t *testing.T) {
	got, err := export.Render(sampleRows(), export.FormatCSS)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := strings.Join([]string{
		":root {",
		"  /* Brand blue */",
		"  --color-base: #0055ff;",
		"  --color-brand: var(--color-base);",
		"  --space-scale: 1.5;",
		"  --flags-dense: true;",
		"}",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("css mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderCSSResolvedValues(t *testing.T) {
	got, err := export.Render(sampleRows(), export.FormatCSS, export.WithResolvedValues(), export.WithSelector(".theme"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(got, ".theme {\n") {
		t.Fatalf("expected custom selector, got %q", got)
	}
	if !strings.Contains(got, "  --color-brand: #0055ff;\n") {
		t.Fatalf("expected resolved reference, got %q", got)
	}
}

func TestRenderSCSS(t *testing.T) {
	got, err := export.Render(sampleRows()[:2], export.FormatSCSS)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "// Brand blue\n$color-base: #0055ff;\n$color-brand: $color-base;\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("scss mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderJS(t *testing.T) {
	got, err := export.Render(sampleRows(), export.FormatJS)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := strings.Join([]string{
		"export const tokens = {",
		"  // Brand blue",
		`  colorBase: "#0055ff",`,
		`  colorBrand: "{color.base}",`,
		"  spaceScale: 1.5,",
		"  flagsDense: true,",
		"};",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("js mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTS(t *testing.T) {
	got, err := export.Render(sampleRows()[2:], export.FormatTS)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := strings.Join([]string{
		"export interface Tokens {",
		"  spaceScale: number;",
		"  flagsDense: boolean;",
		"}",
		"",
		"export const tokens: Tokens = {",
		"  spaceScale: 1.5,",
		"  flagsDense: true,",
		"};",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ts mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormatAndExtension(t *testing.T) {
	for _, name := range []string{"css", "SCSS", " js ", "ts"} {
		format, err := export.ParseFormat(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if got := format.Extension(); got != "."+strings.ToLower(strings.TrimSpace(name)) {
			t.Fatalf("extension for %q = %q", name, got)
		}
	}
	if _, err := export.ParseFormat("yaml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if got := export.Format("yaml").Extension(); got != ".txt" {
		t.Fatalf("expected .txt fallback, got %q", got)
	}
}

func TestIdentifier(t *testing.T) {
	cases := map[string]string{
		"color.base":          "colorBase",
		"color.primary-light": "colorPrimaryLight",
		"font_size.body":      "fontSizeBody",
	}
	for path, want := range cases {
		if got := export.Identifier(path); got != want {
			t.Fatalf("Identifier(%q) = %q, want %q", path, got, want)
		}
	}
}
