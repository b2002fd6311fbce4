package tokens

import (
	"errors"
	"fmt"
)

var (
	// ErrBusinessUnitRequired indicates a load or save without a BU name.
	ErrBusinessUnitRequired = errors.New("tokens: business unit is required")
	// ErrDocumentRequired indicates a save payload without a BU document.
	ErrDocumentRequired = errors.New("tokens: business unit document is required")
	// ErrTokenRootNotFound indicates discovery reached the filesystem root.
	ErrTokenRootNotFound = errors.New("tokens: no tokens directory found")
	// ErrInvalidVersion indicates a version string that is not x.y.z.
	ErrInvalidVersion = errors.New("tokens: invalid version")
	// ErrValidationFailed indicates a save refused because of error issues.
	ErrValidationFailed = errors.New("tokens: validation failed")
	// ErrUnknownPath indicates an edit against a path that holds no token.
	ErrUnknownPath = errors.New("tokens: unknown token path")
	// ErrInvalidPath indicates an empty or malformed token path.
	ErrInvalidPath = errors.New("tokens: invalid token path")
)

// SyntaxError reports a token file that is not valid JSON or whose
// top-level value is not an object.
type SyntaxError struct {
	File string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.File == "" {
		return fmt.Sprintf("tokens: parse document: %v", e.Err)
	}
	return fmt.Sprintf("tokens: parse %s: %v", e.File, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FileError reports a failed storage operation.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("tokens: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func errNotObject(value any) error {
	return fmt.Errorf("top-level value must be an object, got %s", describeValue(value))
}

func withFile(err error, file string) error {
	var syntaxErr *SyntaxError
	if errors.As(err, &syntaxErr) && syntaxErr.File == "" {
		syntaxErr.File = file
		return syntaxErr
	}
	return err
}
