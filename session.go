package tokens

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-tokens/layering"
	"github.com/goliatone/go-tokens/pkg/activity"
)

// TokenEdit is the new content of a token. An empty Type or Description
// keeps the one the token already has.
type TokenEdit struct {
	Value       any
	Type        string
	Description string
}

// Session holds one loaded workspace while it is being edited. Edits go to
// the source documents and the merged tree, source map and rows are rebuilt
// after each one. A Session is not safe for concurrent use.
type Session struct {
	engine *Engine
	result *LoadResult
	dirty  map[string]struct{}
}

// Open loads bu and returns a session over it.
func (e *Engine) Open(ctx context.Context, tokensRoot, bu string) (*Session, error) {
	result, err := e.Load(ctx, tokensRoot, bu)
	if err != nil {
		return nil, err
	}
	return &Session{engine: e, result: result, dirty: map[string]struct{}{}}, nil
}

// Result returns the current state of the workspace.
func (s *Session) Result() *LoadResult {
	return s.result
}

// Dirty lists the files touched since the last save, sorted.
func (s *Session) Dirty() []string {
	files := make([]string, 0, len(s.dirty))
	for file := range s.dirty {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Set writes edit to the file that defines path. Paths not defined anywhere
// are created in the business unit document.
func (s *Session) Set(ctx context.Context, path string, edit TokenEdit) error {
	src, ok := s.result.Sources.Lookup(path)
	if !ok {
		src = layering.Source{Layer: layering.LayerBU, File: s.result.BUPath}
	}
	return s.write(ctx, path, src, edit)
}

// Override writes edit to the business unit document, shadowing whatever
// the core layer defines for path. Type and description default to the
// effective token's.
func (s *Session) Override(ctx context.Context, path string, edit TokenEdit) error {
	if current, ok := s.result.Merged.LookupToken(path); ok {
		if edit.Type == "" {
			edit.Type = current.Type()
		}
		if edit.Description == "" {
			edit.Description = current.Description()
		}
	}
	return s.write(ctx, path, layering.Source{Layer: layering.LayerBU, File: s.result.BUPath}, edit)
}

// Delete removes path from the file that defines it. Deleting a business
// unit override exposes the core value again.
func (s *Session) Delete(ctx context.Context, path string) error {
	src, ok := s.result.Sources.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	doc := s.document(src)
	old, _ := doc.Lookup(path)
	if !doc.DeleteToken(path) {
		return fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	s.touch(src.File)
	s.engine.log(ctx).Debug("Token deleted.", "path", path, "file", src.File)
	s.engine.emit(ctx, activity.BuildTokenDeletedEvent(s.eventInput(path, src, valueOf(old), nil)))
	return nil
}

// Validate checks the current workspace.
func (s *Session) Validate(ctx context.Context) (Issues, error) {
	return s.engine.Validate(ctx, s.result)
}

// Save validates the workspace and, when no error issues remain, writes the
// business unit document and every touched core file. The issues found are
// returned in both cases; ErrValidationFailed reports a refused save.
func (s *Session) Save(ctx context.Context) (SaveResult, Issues, error) {
	issues, err := s.Validate(ctx)
	if err != nil {
		return SaveResult{}, issues, err
	}
	if issues.HasErrors() {
		return SaveResult{}, issues, fmt.Errorf("%w: %d error(s)", ErrValidationFailed, len(issues.Errors()))
	}

	payload := PayloadFrom(s.result)
	payload.CoreDocs = map[string]*Group{}
	for file, doc := range s.result.CoreDocs {
		if _, touched := s.dirty[file]; touched {
			payload.CoreDocs[file] = doc
		}
	}
	result, err := s.engine.Save(ctx, payload)
	for _, file := range result.Written {
		delete(s.dirty, file)
	}
	s.result.rebuild()
	return result, issues, err
}

func (s *Session) write(ctx context.Context, path string, src layering.Source, edit TokenEdit) error {
	if !validPath(path) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	value, err := Normalize(edit.Value)
	if err != nil {
		return err
	}
	doc := s.document(src)
	leaf := NewLeaf(value, edit.Type, edit.Description)
	var old any
	if existing, ok := doc.LookupToken(path); ok {
		old = existing.Value()
		leaf = existing.cloneNode().(*Leaf)
		leaf.SetValue(value)
		if edit.Type != "" {
			leaf.SetType(edit.Type)
		}
		if edit.Description != "" {
			leaf.SetDescription(edit.Description)
		}
	}
	if err := doc.SetToken(path, leaf); err != nil {
		return err
	}
	s.touch(src.File)
	s.engine.log(ctx).Debug("Token updated.", "path", path, "file", src.File, "layer", src.Layer)
	s.engine.emit(ctx, activity.BuildTokenUpdatedEvent(s.eventInput(path, src, old, value)))
	return nil
}

func (s *Session) document(src layering.Source) *Group {
	if src.Layer == layering.LayerCore {
		if doc, ok := s.result.CoreDocs[src.File]; ok {
			return doc
		}
	}
	return s.result.BUDoc
}

func (s *Session) touch(file string) {
	s.dirty[file] = struct{}{}
	s.result.rebuild()
}

func (s *Session) eventInput(path string, src layering.Source, old, value any) activity.TokenEventInput {
	return activity.TokenEventInput{
		TokensRoot:   s.result.TokensRoot,
		BusinessUnit: s.result.BU,
		LoadID:       s.result.ID,
		Path:         path,
		File:         src.File,
		Layer:        string(src.Layer),
		OldValue:     bindingValue(old),
		NewValue:     bindingValue(value),
	}
}

func valueOf(node Node) any {
	switch typed := node.(type) {
	case *Leaf:
		return typed.Value()
	case *Scalar:
		return typed.Value
	default:
		return nil
	}
}
