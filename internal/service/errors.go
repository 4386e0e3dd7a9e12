package service

import (
	"errors"
	"fmt"

	"github.com/ranis-junior/psychology-reports/internal/document"
	"github.com/ranis-junior/psychology-reports/internal/report"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uint, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %d not found", resourceType, id)}
}

func NewErrPsychologistNotFound(id uint) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "psychologist")
}

func NewErrPatientNotFound(id uint) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "patient")
}

func NewErrProgramNotFound(id uint) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "program page")
}

type ErrConflict struct {
	error
}

func NewErrConflict(format string, args ...any) *ErrConflict {
	return &ErrConflict{fmt.Errorf(format, args...)}
}

type ErrBadRequest struct {
	error
}

func NewErrBadRequest(format string, args ...any) *ErrBadRequest {
	return &ErrBadRequest{fmt.Errorf(format, args...)}
}

type ErrConversionFailed struct {
	error
}

func NewErrConversionFailed(filename string, err error) *ErrConversionFailed {
	return &ErrConversionFailed{fmt.Errorf("failed to convert %q: %w", filename, err)}
}

type ErrTaskSubmission struct {
	error
}

func NewErrTaskSubmission(err error) *ErrTaskSubmission {
	return &ErrTaskSubmission{fmt.Errorf("failed to submit report task: %w", err)}
}

type ErrExternalProcessTimeout struct {
	error
}

func NewErrExternalProcessTimeout(err error) *ErrExternalProcessTimeout {
	return &ErrExternalProcessTimeout{err}
}

type ErrEmptyInput struct {
	error
}

func NewErrEmptyInput(what string) *ErrEmptyInput {
	return &ErrEmptyInput{fmt.Errorf("nothing to process: %s", what)}
}

type ErrStorage struct {
	error
}

func NewErrStorage(err error) *ErrStorage {
	return &ErrStorage{fmt.Errorf("object storage failure: %w", err)}
}

// documentError maps normalizer and fetcher failures of one input onto the service errors.
func documentError(filename string, err error) error {
	var convErr *document.ConversionError
	switch {
	case errors.Is(err, document.ErrProcessTimeout):
		return NewErrExternalProcessTimeout(fmt.Errorf("converting %q: %w", filename, err))
	case errors.Is(err, document.ErrEmptyInput):
		return NewErrEmptyInput(filename)
	case errors.Is(err, document.ErrUnsupportedExtension),
		errors.Is(err, document.ErrNotAnImage),
		errors.Is(err, document.ErrTooLarge):
		return NewErrBadRequest("%s: %v", filename, err)
	case errors.As(err, &convErr):
		return NewErrConversionFailed(filename, err)
	default:
		return err
	}
}

func reportError(err error) error {
	switch {
	case errors.Is(err, report.ErrTaskSubmission):
		return NewErrTaskSubmission(err)
	case errors.Is(err, report.ErrRenderTimeout):
		return NewErrExternalProcessTimeout(err)
	default:
		return err
	}
}
