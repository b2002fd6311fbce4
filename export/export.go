// Package export renders flattened token rows as CSS custom properties, SCSS
// variables or JavaScript and TypeScript modules.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stoewer/go-strcase"

	tokens "github.com/goliatone/go-tokens"
)

// Format names an output flavour.
type Format string

const (
	FormatCSS  Format = "css"
	FormatSCSS Format = "scss"
	FormatJS   Format = "js"
	FormatTS   Format = "ts"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatCSS, FormatSCSS, FormatJS, FormatTS}
}

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats() {
		if format == known {
			return format, nil
		}
	}
	return "", fmt.Errorf("export: unknown format %q", name)
}

// Extension returns the file extension for the format, dot included.
func (f Format) Extension() string {
	switch f {
	case FormatCSS, FormatSCSS, FormatJS, FormatTS:
		return "." + string(f)
	default:
		return ".txt"
	}
}

// Option configures rendering.
type Option func(*config)

type config struct {
	resolved bool
	selector string
}

// WithResolvedValues emits the resolved value of references instead of a
// link to the referenced variable.
func WithResolvedValues() Option {
	return func(cfg *config) {
		cfg.resolved = true
	}
}

// WithSelector changes the CSS selector wrapping custom properties.
func WithSelector(selector string) Option {
	return func(cfg *config) {
		if selector != "" {
			cfg.selector = selector
		}
	}
}

// Render returns rows in format.
func Render(rows []tokens.Row, format Format, opts ...Option) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, rows, format, opts...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write renders rows in format to w.
func Write(w io.Writer, rows []tokens.Row, format Format, opts ...Option) error {
	cfg := config{selector: ":root"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	var lines []string
	switch format {
	case FormatCSS:
		lines = renderCSS(rows, cfg)
	case FormatSCSS:
		lines = renderSCSS(rows, cfg)
	case FormatJS:
		lines = renderJS(rows, cfg)
	case FormatTS:
		lines = renderTS(rows, cfg)
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// CSSVariable returns the custom property name for a token path.
func CSSVariable(path string) string {
	return "--" + strings.ReplaceAll(path, tokens.PathSeparator, "-")
}

// SCSSVariable returns the SCSS variable name for a token path.
func SCSSVariable(path string) string {
	return "$" + strings.ReplaceAll(path, tokens.PathSeparator, "-")
}

// Identifier returns the camel-cased JavaScript key for a token path.
func Identifier(path string) string {
	return strcase.LowerCamelCase(strings.ReplaceAll(path, tokens.PathSeparator, "-"))
}

func renderCSS(rows []tokens.Row, cfg config) []string {
	lines := []string{cfg.selector + " {"}
	for _, row := range rows {
		if row.Description != "" {
			lines = append(lines, "  /* "+row.Description+" */")
		}
		value := literal(row, cfg)
		if target, ok := reference(row, cfg); ok {
			value = "var(" + CSSVariable(target) + ")"
		}
		lines = append(lines, fmt.Sprintf("  %s: %s;", CSSVariable(row.Path), value))
	}
	return append(lines, "}")
}

func renderSCSS(rows []tokens.Row, cfg config) []string {
	var lines []string
	for _, row := range rows {
		if row.Description != "" {
			lines = append(lines, "// "+row.Description)
		}
		value := literal(row, cfg)
		if target, ok := reference(row, cfg); ok {
			value = SCSSVariable(target)
		}
		lines = append(lines, fmt.Sprintf("%s: %s;", SCSSVariable(row.Path), value))
	}
	return lines
}

func renderJS(rows []tokens.Row, cfg config) []string {
	lines := []string{"export const tokens = {"}
	for _, row := range rows {
		if row.Description != "" {
			lines = append(lines, "  // "+row.Description)
		}
		lines = append(lines, fmt.Sprintf("  %s: %s,", Identifier(row.Path), scriptValue(row, cfg)))
	}
	return append(lines, "};")
}

func renderTS(rows []tokens.Row, cfg config) []string {
	types := []string{"export interface Tokens {"}
	values := []string{"export const tokens: Tokens = {"}
	for _, row := range rows {
		key := Identifier(row.Path)
		if row.Description != "" {
			values = append(values, "  /** "+row.Description+" */")
		}
		values = append(values, fmt.Sprintf("  %s: %s,", key, scriptValue(row, cfg)))
		types = append(types, fmt.Sprintf("  %s: %s;", key, scriptType(value(row, cfg))))
	}
	types = append(types, "}", "")
	return append(types, append(values, "};")...)
}

func value(row tokens.Row, cfg config) any {
	if cfg.resolved && row.Resolved != nil {
		return row.Resolved
	}
	return row.Value
}

func reference(row tokens.Row, cfg config) (string, bool) {
	s, ok := value(row, cfg).(string)
	if !ok {
		return "", false
	}
	return tokens.ParseReference(s)
}

func literal(row tokens.Row, cfg config) string {
	switch typed := value(row, cfg).(type) {
	case nil:
		return "null"
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

func scriptValue(row tokens.Row, cfg config) string {
	switch typed := value(row, cfg).(type) {
	case string:
		return strconv.Quote(typed)
	default:
		return literal(row, cfg)
	}
}

func scriptType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return "string"
	}
}
