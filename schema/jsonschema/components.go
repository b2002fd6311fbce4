package jsonschema

import (
	"fmt"
	"regexp"
	"strings"
)

// defsRegistry collects shared schemas under $defs. Structurally equal
// schemas registered under different names share one entry.
type defsRegistry struct {
	byDigest  map[string]string
	schemas   map[string]map[string]any
	usedNames map[string]struct{}
}

func newDefsRegistry() *defsRegistry {
	return &defsRegistry{
		byDigest:  map[string]string{},
		schemas:   map[string]map[string]any{},
		usedNames: map[string]struct{}{},
	}
}

func (r *defsRegistry) register(nameHint string, node *schemaNode) string {
	digest := node.Digest()
	if name, ok := r.byDigest[digest]; ok && digest != "" {
		return defRef(name)
	}
	name := r.uniqueName(nameHint)
	if digest != "" {
		r.byDigest[digest] = name
	}
	r.schemas[name] = node.toMap()
	return defRef(name)
}

func (r *defsRegistry) uniqueName(hint string) string {
	safe := sanitizeDefName(hint)
	if safe == "" {
		safe = "Schema"
	}
	if _, exists := r.usedNames[safe]; !exists {
		r.usedNames[safe] = struct{}{}
		return safe
	}
	for suffix := 1; ; suffix++ {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := r.usedNames[candidate]; !exists {
			r.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

func (r *defsRegistry) defs() map[string]any {
	if len(r.schemas) == 0 {
		return nil
	}
	out := make(map[string]any, len(r.schemas))
	for name, schema := range r.schemas {
		out[name] = schema
	}
	return out
}

func defRef(name string) string {
	return "#/$defs/" + name
}

var defNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeDefName(name string) string {
	name = strings.Trim(defNameRegexp.ReplaceAllString(name, "_"), "_")
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
