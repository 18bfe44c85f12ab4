// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"time"
)

// Exit codes reported by the command line.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitBadInput = 2
)

// ErrorHandler turns errors that reach the top of a command into a log line
// and a process exit code.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err and returns the exit code for it. A nil error yields ExitOK.
func (h *ErrorHandler) Handle(command string, err error) int {
	if err == nil {
		return ExitOK
	}

	stdErr := h.normalizeError(err)
	h.logError(command, stdErr)
	return ExitCode(stdErr.Code)
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) logError(command string, stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	h.logger.Error("Command failed", map[string]interface{}{
		"command":       command,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
}

// ExitCode maps an error code to a process exit code. Caller mistakes
// (bad ids, bad modes) exit with ExitBadInput.
func ExitCode(code ErrorCode) int {
	switch GetErrorCategory(code) {
	case "VALIDATION", "CATALOG":
		if code == ErrCodeCatalogInvalid {
			return ExitFailure
		}
		return ExitBadInput
	default:
		return ExitFailure
	}
}
