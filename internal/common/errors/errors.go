// Package errors provides the standardized error types shared by the card,
// recommendation and state packages.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeStorage             ErrorCode = "STORAGE_ERROR"
	ErrCodeStorageEncodeFailed ErrorCode = "STORAGE_ENCODE_FAILED"
	ErrCodeStorageDecodeFailed ErrorCode = "STORAGE_DECODE_FAILED"

	ErrCodeLocationUnavailable ErrorCode = "LOCATION_UNAVAILABLE"

	ErrCodeInvalidArgument         ErrorCode = "INVALID_ARGUMENT"
	ErrCodeUnknownMonetizationMode ErrorCode = "UNKNOWN_MONETIZATION_MODE"

	ErrCodeCatalogInvalid ErrorCode = "CATALOG_INVALID"
	ErrCodeCardNotFound   ErrorCode = "CARD_NOT_FOUND"
	ErrCodeDeckNotFound   ErrorCode = "DECK_NOT_FOUND"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Outcomes
// ==========================

// Outcome tells a caller how a recoverable operation finished. Storage and
// location reads never fail outright; they either succeed or substitute a
// typed default, and the outcome says which.
type Outcome int

const (
	// OutcomeOK means the value came from the backing source.
	OutcomeOK Outcome = iota
	// OutcomeDefault means nothing was stored and the typed default was used.
	OutcomeDefault
	// OutcomeFailed means the source failed; the returned value is the typed default.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDefault:
		return "default"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UsedFallback reports whether the value returned alongside o is a default.
func (o Outcome) UsedFallback() bool {
	return o != OutcomeOK
}

// ==========================
// 3. Error Constructors
// ==========================

// NewStorageError creates a retryable storage I/O error.
func NewStorageError(op, key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorage,
		Message:   "Persistent store operation failed",
		Details:   fmt.Sprintf("op: %s, key: %s, error: %v", op, key, err),
		Retryable: true,
		Metadata:  map[string]interface{}{"op": op, "key": key},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStorageEncodeError creates a non-retryable serialization error.
func NewStorageEncodeError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageEncodeFailed,
		Message:   "Failed to encode value for persistent store",
		Details:   fmt.Sprintf("key: %s, error: %v", key, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"key": key},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStorageDecodeError creates a non-retryable deserialization error.
func NewStorageDecodeError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageDecodeFailed,
		Message:   "Stored value could not be decoded",
		Details:   fmt.Sprintf("key: %s, error: %v", key, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"key": key},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewLocationUnavailableError records why a location lookup fell back.
func NewLocationUnavailableError(reason string, err error) *StandardError {
	details := reason
	if err != nil {
		details = fmt.Sprintf("%s: %v", reason, err)
	}
	return &StandardError{
		Code:      ErrCodeLocationUnavailable,
		Message:   "Device location unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidArgumentError creates a non-retryable precondition error.
func NewInvalidArgumentError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidArgument,
		Message:   "Invalid argument",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownMonetizationModeError rejects a mode outside affiliate/sponsor.
func NewUnknownMonetizationModeError(mode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownMonetizationMode,
		Message:   "Unknown monetization mode",
		Details:   fmt.Sprintf("mode: %q", mode),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogInvalidError reports a catalog document that failed validation.
func NewCatalogInvalidError(source string, problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Catalog failed validation",
		Details:   fmt.Sprintf("source: %s, problems: %s", source, strings.Join(problems, "; ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"source": source, "problemCount": len(problems)},
		Timestamp: time.Now().UTC(),
	}
}

func NewCardNotFoundError(cardID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCardNotFound,
		Message:   "Card not found in catalog",
		Details:   fmt.Sprintf("cardId: %s", cardID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDeckNotFoundError(deckID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeckNotFound,
		Message:   "Deck not found in catalog",
		Details:   fmt.Sprintf("deckId: %s", deckID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// CodeOf returns the ErrorCode of the first StandardError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code, true
	}
	return "", false
}

// IsCode reports whether err carries code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsRecoverable reports whether the error class is handled by substituting a
// default instead of surfacing it to the caller.
func IsRecoverable(code ErrorCode) bool {
	switch code {
	case ErrCodeStorage, ErrCodeStorageEncodeFailed, ErrCodeStorageDecodeFailed, ErrCodeLocationUnavailable:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "STORAGE"):
		return "STORAGE"
	case strings.HasPrefix(codeStr, "LOCATION"):
		return "LOCATION"
	case strings.Contains(codeStr, "CATALOG") || strings.HasSuffix(codeStr, "NOT_FOUND"):
		return "CATALOG"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
