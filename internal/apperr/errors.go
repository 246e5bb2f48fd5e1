// Package apperr defines the sentinel errors shared across notesearch.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrMalformedRecord marks a record missing a required field or carrying
	// an unparsable one.
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidCommand  = errors.New("invalid command")
	ErrInvalidQuery    = errors.New("invalid query")
)
