package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors produced by Handler.Execute.
const (
	CodeInvalidMessage  = "SITECMS_COMMAND_INVALID"
	CodeCanceled        = "SITECMS_COMMAND_CANCELED"
	CodeDeadline        = "SITECMS_COMMAND_DEADLINE"
	CodeExecutionFailed = "SITECMS_COMMAND_FAILED"
)

// Errors a lower layer already categorised (render validation, store not
// found) are returned as they are.

func invalidMessage(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command message").
		WithTextCode(CodeInvalidMessage)
}

func executionFailed(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	code, message := CodeExecutionFailed, "command failed"
	switch {
	case errors.Is(err, context.Canceled):
		code, message = CodeCanceled, "command canceled"
	case errors.Is(err, context.DeadlineExceeded):
		code, message = CodeDeadline, "command deadline exceeded"
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
