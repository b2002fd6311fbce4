package tokens

import (
	"github.com/goliatone/go-tokens/layering"
)

// Row is one addressable token of a flattened document.
type Row struct {
	Path  string         `json:"path"`
	Layer layering.Layer `json:"layer"`
	File  string         `json:"file,omitempty"`
	Type  string         `json:"type"`
	// Value is the raw $value: a string, json.Number, bool or nil. Object and
	// array values are serialised to compact JSON.
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
	// Resolved is set only when Value is a reference that resolves to a
	// string, number or boolean.
	Resolved any `json:"resolved,omitempty"`
}

// IsReference reports whether the row's raw value is a reference.
func (r Row) IsReference() bool {
	return IsReference(r.Value)
}

// Flatten walks doc in document order and emits one row per token. Loose
// scalars sitting directly in a group are emitted with an empty type.
// References are resolved against resolver, which defaults to doc.
func Flatten(doc *Group, sources SourceMap, resolver *Group) []Row {
	if resolver == nil {
		resolver = doc
	}
	rows := []Row{}
	walkTokens(doc, "", func(path string, node Node) {
		row := Row{Path: path, Layer: sources.LayerOf(path)}
		if src, ok := sources.Lookup(path); ok {
			row.File = src.File
		}
		switch typed := node.(type) {
		case *Leaf:
			raw := typed.Value()
			row.Type = typed.Type()
			row.Description = typed.Description()
			row.Value = displayValue(raw)
			if IsReference(raw) {
				if res := Resolve(raw, resolver); res.Status == ResolveOK && isScalarValue(res.Value) {
					row.Resolved = res.Value
				}
			}
		case *Scalar:
			row.Value = displayValue(typed.Value)
		}
		rows = append(rows, row)
	})
	return rows
}

func displayValue(value any) any {
	switch value.(type) {
	case *Object, []any:
		return encodeCompact(value)
	default:
		return value
	}
}
