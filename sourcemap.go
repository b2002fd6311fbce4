package tokens

import (
	"sort"

	"github.com/goliatone/go-tokens/layering"
)

// SourceMap maps token paths to the file and layer that last defined them.
// Edits are routed back to files through it.
type SourceMap map[string]layering.Source

// CollectSources records src for every token path of doc. Called once per
// document in merge order, later documents overwrite earlier entries, which
// mirrors merge precedence.
func CollectSources(doc *Group, src layering.Source, into SourceMap) {
	walkTokens(doc, "", func(path string, _ Node) {
		into[path] = src
	})
}

// Lookup returns the source recorded for path.
func (m SourceMap) Lookup(path string) (layering.Source, bool) {
	src, ok := m[path]
	return src, ok
}

// LayerOf returns the layer owning path, defaulting to core.
func (m SourceMap) LayerOf(path string) layering.Layer {
	if src, ok := m[path]; ok && src.Layer != layering.LayerUnknown {
		return src.Layer
	}
	return layering.LayerCore
}

// Prune drops entries whose path is no longer a token in merged.
func (m SourceMap) Prune(merged *Group) {
	live := map[string]struct{}{}
	walkTokens(merged, "", func(path string, _ Node) {
		live[path] = struct{}{}
	})
	for path := range m {
		if _, ok := live[path]; !ok {
			delete(m, path)
		}
	}
}

// PathsForFile lists the sorted paths owned by file.
func (m SourceMap) PathsForFile(file string) []string {
	var paths []string
	for path, src := range m {
		if src.File == file {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a copy of the map.
func (m SourceMap) Clone() SourceMap {
	out := make(SourceMap, len(m))
	for path, src := range m {
		out[path] = src
	}
	return out
}
