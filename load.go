package tokens

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-tokens/layering"
	"github.com/goliatone/go-tokens/pkg/activity"
)

// LoadResult is the outcome of loading one business unit on top of the core
// layer. Everything in it is derived from storage at load time.
type LoadResult struct {
	ID         string
	TokensRoot string
	BU         string
	// Merged is the core layer with the business unit document applied.
	Merged  *Group
	Rows    []Row
	Sources SourceMap
	// CoreFiles lists the core file paths in merge order.
	CoreFiles []string
	CoreDocs  map[string]*Group
	BUDoc     *Group
	BUPath    string
}

// Chain returns the merge chain of the load.
func (r *LoadResult) Chain() layering.Chain {
	return layering.CoreChain(r.CoreFiles, r.BUPath)
}

// Documents returns every source document paired with its source, in merge
// order.
func (r *LoadResult) Documents() []LayerDocument {
	docs := make([]LayerDocument, 0, len(r.CoreFiles)+1)
	for _, src := range r.Chain().Ordered() {
		doc := r.BUDoc
		if src.Layer == layering.LayerCore {
			doc = r.CoreDocs[src.File]
		}
		docs = append(docs, LayerDocument{Source: src, Doc: doc})
	}
	return docs
}

// Trace reports which source documents define path and which one wins.
func (r *LoadResult) Trace(path string) Trace {
	return TracePath(path, r.Documents())
}

// Row returns the flattened row for path.
func (r *LoadResult) Row(path string) (Row, bool) {
	for _, row := range r.Rows {
		if row.Path == path {
			return row, true
		}
	}
	return Row{}, false
}

// Load reads the core layer and the business unit document bu from
// tokensRoot, merges them and flattens the result.
func (e *Engine) Load(ctx context.Context, tokensRoot, bu string) (*LoadResult, error) {
	if strings.TrimSpace(bu) == "" {
		return nil, ErrBusinessUnitRequired
	}
	logger := e.log(ctx).With("tokens_root", tokensRoot, "bu", bu)

	cores, err := e.Core(ctx, tokensRoot)
	if err != nil {
		return nil, err
	}
	files := coreFiles(e.store, cores)
	logger.Debug("Discovered core files.", "count", len(files))

	coreDocs := make(map[string]*Group, len(files))
	for _, file := range files {
		doc, err := e.readDocument(ctx, file)
		if err != nil {
			return nil, err
		}
		coreDocs[file] = doc
	}

	buPath := e.store.Join(tokensRoot, bu, BUTokensFile)
	buDoc, err := e.readDocument(ctx, buPath)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{
		ID:         e.newID(),
		TokensRoot: tokensRoot,
		BU:         bu,
		CoreFiles:  files,
		CoreDocs:   coreDocs,
		BUDoc:      buDoc,
		BUPath:     buPath,
	}
	result.rebuild()
	logger.Debug("Tokens loaded.", "load_id", result.ID, "rows", len(result.Rows))

	e.emit(ctx, activity.BuildLoadedEvent(activity.TokenEventInput{
		TokensRoot:   tokensRoot,
		BusinessUnit: bu,
		LoadID:       result.ID,
		Metadata: map[string]any{
			"core_files": len(result.CoreFiles),
			"rows":       len(result.Rows),
		},
	}))
	return result, nil
}

// rebuild recomputes the merged tree, the source map and the rows from the
// source documents.
func (r *LoadResult) rebuild() {
	sources := SourceMap{}
	merged := NewGroup()
	for _, src := range r.Chain().Ordered() {
		doc := r.BUDoc
		if src.Layer == layering.LayerCore {
			doc = r.CoreDocs[src.File]
		}
		CollectSources(doc, src, sources)
		merged = Merge(merged, doc)
	}
	sources.Prune(merged)
	r.Merged = merged
	r.Sources = sources
	r.Rows = Flatten(merged, sources, merged)
}

func (e *Engine) readDocument(ctx context.Context, path string) (*Group, error) {
	data, err := e.store.ReadFile(ctx, path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, withFile(err, path)
	}
	return doc, nil
}

// sortedCoreFiles returns the keys of docs in merge order.
func sortedCoreFiles(docs map[string]*Group) []string {
	files := make([]string, 0, len(docs))
	for file := range docs {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

func requireBU(bu, buPath string) error {
	if strings.TrimSpace(bu) == "" && strings.TrimSpace(buPath) == "" {
		return fmt.Errorf("%w: set BU or BUPath", ErrBusinessUnitRequired)
	}
	return nil
}
