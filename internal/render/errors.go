package render

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// ErrInvalidRequest marks requests rejected before rendering.
var ErrInvalidRequest = errors.New("render: invalid request")

const (
	renderValidationCode = "RENDER_INVALID_REQUEST"
	renderTemplateCode   = "RENDER_TEMPLATE_FAILED"
	renderCanceledCode   = "RENDER_CONTEXT_CANCELED"
	renderTimeoutCode    = "RENDER_CONTEXT_TIMEOUT"
)

// StageError identifies the pipeline step that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("render: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	var existing *StageError
	if errors.As(err, &existing) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

func wrapRequestError(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(fmt.Errorf("%w: %w", ErrInvalidRequest, err), goerrors.CategoryValidation, "render request is invalid").
		WithTextCode(renderValidationCode)
}

// wrapRenderError categorises publish failures: context errors as command
// errors, everything else as template validation errors.
func wrapRenderError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "render cancelled").
			WithTextCode(renderCanceledCode)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "render deadline exceeded").
			WithTextCode(renderTimeoutCode)
	default:
		return goerrors.Wrap(err, goerrors.CategoryValidation, "render failed").
			WithTextCode(renderTemplateCode)
	}
}
