package tokens

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-tokens/layering"
)

// Trace captures provenance for a token path across every document that was
// merged to produce the effective value.
type Trace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how one source document contributed to a traced path.
type Provenance struct {
	Source layering.Source `json:"source"`
	Path   string          `json:"path"`
	Value  any             `json:"value,omitempty"`
	Found  bool            `json:"found"`
	// Effective marks the document whose definition won the merge.
	Effective bool `json:"effective,omitempty"`
}

// LayerDocument pairs a parsed document with the source it was read from.
type LayerDocument struct {
	Source layering.Source
	Doc    *Group
}

// Winner returns the provenance entry that produced the effective value.
func (t Trace) Winner() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Effective {
			return layer, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// TracePath walks docs in merge order and records which of them define
// path. The last defining document is the effective one.
func TracePath(path string, docs []LayerDocument) Trace {
	trace := Trace{Path: path, Layers: make([]Provenance, 0, len(docs))}
	winner := -1
	for _, doc := range docs {
		entry := Provenance{Source: doc.Source, Path: path}
		node, ok := doc.Doc.Lookup(path)
		switch {
		case ok && node.Kind() != KindGroup:
			entry.Found = true
			entry.Value = cloneValue(node.raw())
			winner = len(trace.Layers)
		case ok, shadowsPath(doc.Doc, path):
			// A group at path, or a value at one of its ancestors, replaces
			// whatever earlier documents defined.
			winner = -1
		}
		trace.Layers = append(trace.Layers, entry)
	}
	if winner >= 0 {
		trace.Layers[winner].Effective = true
	}
	return trace
}

func shadowsPath(doc *Group, path string) bool {
	parts := SplitPath(path)
	for i := 1; i < len(parts); i++ {
		node, ok := doc.Lookup(strings.Join(parts[:i], PathSeparator))
		if ok && node.Kind() != KindGroup {
			return true
		}
	}
	return false
}
