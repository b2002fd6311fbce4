// Package layering names the layers of a token workspace and the order in
// which their documents are merged.
package layering

import (
	"slices"
	"strings"
)

// Layer identifies which side of the workspace a document belongs to.
type Layer string

const (
	// LayerUnknown guards against misconfiguration so call sites can detect
	// missing metadata.
	LayerUnknown Layer = ""
	// LayerCore is the shared baseline, stored in `_`-prefixed directories.
	LayerCore Layer = "core"
	// LayerBU is a business unit override document. It always merges last.
	LayerBU Layer = "bu"
)

func (l Layer) String() string {
	if l == LayerUnknown {
		return "unknown"
	}
	return string(l)
}

// ParseLayer converts a string into a Layer. Returns LayerUnknown for
// unrecognised values.
func ParseLayer(value string) Layer {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "core":
		return LayerCore
	case "bu":
		return LayerBU
	default:
		return LayerUnknown
	}
}

// Precedence orders layers for merging. Higher values win.
func (l Layer) Precedence() int {
	switch l {
	case LayerCore:
		return 1
	case LayerBU:
		return 2
	default:
		return 0
	}
}

// Source records the physical file and layer a token path came from.
type Source struct {
	Layer Layer  `json:"layer"`
	File  string `json:"file"`
}

// Chain is the ordered sequence of source files for one load, weakest first.
type Chain struct {
	ordered []Source
}

// NewChain orders sources for merging: core files sorted by full path, then
// business unit files. Duplicate files and unknown layers are dropped.
func NewChain(sources ...Source) Chain {
	filtered := make([]Source, 0, len(sources))
	seen := map[string]struct{}{}
	for _, src := range sources {
		if src.Layer == LayerUnknown || src.File == "" {
			continue
		}
		if _, exists := seen[src.File]; exists {
			continue
		}
		seen[src.File] = struct{}{}
		filtered = append(filtered, src)
	}

	slices.SortStableFunc(filtered, func(a, b Source) int {
		if a.Layer != b.Layer {
			return a.Layer.Precedence() - b.Layer.Precedence()
		}
		if a.Layer == LayerCore {
			return strings.Compare(a.File, b.File)
		}
		return 0
	})
	return Chain{ordered: filtered}
}

// CoreChain builds a chain from core files and a single business unit file.
func CoreChain(coreFiles []string, buFile string) Chain {
	sources := make([]Source, 0, len(coreFiles)+1)
	for _, file := range coreFiles {
		sources = append(sources, Source{Layer: LayerCore, File: file})
	}
	if buFile != "" {
		sources = append(sources, Source{Layer: LayerBU, File: buFile})
	}
	return NewChain(sources...)
}

// Ordered returns the merge sequence from weakest (index 0) to strongest.
func (c Chain) Ordered() []Source {
	out := make([]Source, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of sources.
func (c Chain) Len() int {
	return len(c.ordered)
}

// Files returns the files of layer in merge order.
func (c Chain) Files(layer Layer) []string {
	var files []string
	for _, src := range c.ordered {
		if src.Layer == layer {
			files = append(files, src.File)
		}
	}
	return files
}

// Strongest returns the last source in the chain (zero Source if empty).
func (c Chain) Strongest() Source {
	if len(c.ordered) == 0 {
		return Source{}
	}
	return c.ordered[len(c.ordered)-1]
}

// Weakest returns the first source in the chain (zero Source if empty).
func (c Chain) Weakest() Source {
	if len(c.ordered) == 0 {
		return Source{}
	}
	return c.ordered[0]
}
