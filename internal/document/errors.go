package document

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrEmptyInput           = errors.New("empty input")
	ErrProcessTimeout       = errors.New("external process timed out")
	ErrNotAnImage           = errors.New("content is not an image")
	ErrTooLarge             = errors.New("content exceeds the upload limit")
)

// ConversionError reports a document that could not be turned into a PDF page or a cover.
type ConversionError struct {
	Stage string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s conversion failed: %v", e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func newConversionError(stage string, err error) error {
	return &ConversionError{Stage: stage, Err: err}
}
