package tokens

import (
	"context"

	"github.com/goliatone/go-tokens/layering"
	"github.com/goliatone/go-tokens/pkg/activity"
)

// SavePayload lists the documents to write back. Core documents are keyed by
// their full file path.
type SavePayload struct {
	TokensRoot string
	BU         string
	CoreDocs   map[string]*Group
	BUDoc      *Group
	// BUPath overrides {TokensRoot}/{BU}/tokens.json.
	BUPath string
}

// SaveResult reports the files written, in write order.
type SaveResult struct {
	Success bool     `json:"success"`
	Written []string `json:"written"`
}

// PayloadFrom builds a save payload that writes back every document of r.
func PayloadFrom(r *LoadResult) SavePayload {
	return SavePayload{
		TokensRoot: r.TokensRoot,
		BU:         r.BU,
		CoreDocs:   r.CoreDocs,
		BUDoc:      r.BUDoc,
		BUPath:     r.BUPath,
	}
}

// Save writes every core document to its own path, sorted, then the business
// unit document. The payload is checked before anything is written. The
// first failing write stops the save; files written before it stay written.
func (e *Engine) Save(ctx context.Context, payload SavePayload) (SaveResult, error) {
	if payload.BUDoc == nil {
		return SaveResult{}, ErrDocumentRequired
	}
	if err := requireBU(payload.BU, payload.BUPath); err != nil {
		return SaveResult{}, err
	}
	buPath := payload.BUPath
	if buPath == "" {
		buPath = e.store.Join(payload.TokensRoot, payload.BU, BUTokensFile)
	}
	logger := e.log(ctx).With("bu", payload.BU)

	result := SaveResult{Written: []string{}}
	write := func(path string, layer layering.Layer, doc *Group) error {
		if err := e.writeDocument(ctx, path, doc); err != nil {
			logger.Error("Token file write failed.", "file", path, "error", err)
			return err
		}
		result.Written = append(result.Written, path)
		e.emit(ctx, activity.BuildFileWrittenEvent(activity.TokenEventInput{
			TokensRoot:   payload.TokensRoot,
			BusinessUnit: payload.BU,
			File:         path,
			Layer:        string(layer),
		}))
		return nil
	}

	for _, file := range sortedCoreFiles(payload.CoreDocs) {
		if err := write(file, layering.LayerCore, payload.CoreDocs[file]); err != nil {
			return result, err
		}
	}
	if err := write(buPath, layering.LayerBU, payload.BUDoc); err != nil {
		return result, err
	}

	result.Success = true
	logger.Debug("Tokens saved.", "files", len(result.Written))
	e.emit(ctx, activity.BuildSavedEvent(activity.TokenEventInput{
		TokensRoot:   payload.TokensRoot,
		BusinessUnit: payload.BU,
		Metadata:     map[string]any{"files": append([]string{}, result.Written...)},
	}))
	return result, nil
}

func (e *Engine) writeDocument(ctx context.Context, path string, doc *Group) error {
	data, err := EncodeDocument(doc)
	if err != nil {
		return &FileError{Op: "encode", Path: path, Err: err}
	}
	if err := e.store.WriteFile(ctx, path, data); err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}
	return nil
}
