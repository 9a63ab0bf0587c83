package view

import "errors"

var (
	// ErrMissingInput means the session or the date was not provided.
	ErrMissingInput = errors.New("session and date are required")
	// ErrInvalidInput means an input was present but malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoTable means the viewer has not rendered a table yet.
	ErrNoTable = errors.New("no table rendered")
)

// RetrievalError wraps a data source failure during a render.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return "load attendance: " + e.Err.Error()
}

func (e *RetrievalError) Unwrap() error { return e.Err }
