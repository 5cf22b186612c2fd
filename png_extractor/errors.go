package png_extractor

import (
	"errors"
	"fmt"
)

var (
	ErrStartSignatureNotFound = errors.New("PNG start signature not found")
	ErrEndSignatureNotFound   = errors.New("PNG end signature not found")
)

// ReadError is returned when the source file cannot be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func (e *ReadError) Is(err error) bool {
	_, ok := err.(*ReadError)
	return ok
}

// WriteError is returned when the extracted payload cannot be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func (e *WriteError) Is(err error) bool {
	_, ok := err.(*WriteError)
	return ok
}
