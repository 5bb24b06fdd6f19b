package models

import (
	"errors"
	"fmt"
)

// ErrNotADirectory is returned when the root of a pass is missing or is not a
// directory. It aborts the run before any work is done.
var ErrNotADirectory = errors.New("not a directory")

// Kinds of per-document failures. None of them abort a batch.
const (
	ErrorKindParse      = "parse_error"
	ErrorKindEncoding   = "encoding_error"
	ErrorKindFilesystem = "filesystem_error"
)

// DocumentError is a failure confined to a single document.
type DocumentError struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
	Err  error  `json:"-" yaml:"-"`
	// Message mirrors Err for serialized reports.
	Message string `json:"message" yaml:"message"`
}

// NewDocumentError builds a DocumentError with its message filled in.
func NewDocumentError(path, kind string, err error) *DocumentError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &DocumentError{Path: path, Kind: kind, Err: err, Message: msg}
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
