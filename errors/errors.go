// Package errors provides the error handling system for the leadline chat
// relay. It includes structured error types, JSON response formatting,
// request ID tracking, and integrated logging with Uber's zap logger.
//
// The wire format is deliberately minimal: clients receive a single
// {"error": "<message>"} object. Everything else an error carries (type,
// status code, request ID, details, wrapped cause) stays internal and is
// used for logging and metrics only.
//
// Basic usage:
//
//	// Simple error response
//	errors.Error(w, "Something went wrong", http.StatusInternalServerError)
//
//	// Type-specific error
//	errors.ErrorWithType(w, "Invalid industry.", errors.ValidationError, http.StatusBadRequest)
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLogger is the default zap logger instance used throughout the package.
// It is initialized to a production configuration but can be overridden using SetLogger.
var DefaultLogger *zap.Logger

func init() {
	var err error
	DefaultLogger, err = zap.NewProduction()
	if err != nil {
		DefaultLogger = zap.NewNop()
	}
}

// SetLogger allows setting a custom zap logger instance.
// If nil is provided, the function will do nothing to prevent
// accidentally disabling logging.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// ErrorType categorizes the errors that can occur in the relay. Each type
// corresponds to one branch of the failure taxonomy and carries an
// appropriate HTTP status and handling policy.
type ErrorType string

const (
	// ValidationError represents client input failures: malformed bodies,
	// unknown industry keys, continuation without a started session.
	ValidationError ErrorType = "validation_error"

	// ConfigError represents configuration failures. These are fatal at
	// startup and never reach a client.
	ConfigError ErrorType = "config_error"

	// ProviderError represents failures on the completion-API path:
	// network errors, non-2xx provider responses, open circuit breaker.
	ProviderError ErrorType = "provider_error"

	// MalformedCompletionError represents a completion that came back but
	// could not be parsed into the structured reply contract.
	MalformedCompletionError ErrorType = "malformed_completion"

	// TimeoutError represents a completion call that exceeded its deadline.
	TimeoutError ErrorType = "timeout_error"

	// InternalError represents unexpected internal server errors.
	InternalError ErrorType = "internal_error"
)

// APIError is the custom error type used at the HTTP boundary. It implements
// the error interface and serializes to the client-facing wire shape: only
// the message is exposed, under the "error" key.
type APIError struct {
	// Message is the client-visible error description
	Message string `json:"error"`

	// Type categorizes the error internally (not exposed in JSON)
	Type ErrorType `json:"-"`

	// Code is the HTTP status code (not exposed in JSON)
	Code int `json:"-"`

	// RequestID links the error to a specific request (not exposed in JSON)
	RequestID string `json:"-"`

	// Details contains additional error context for logging
	Details map[string]interface{} `json:"-"`

	// err is the underlying error
	err error
}

// Error implements the error interface. It returns a string that
// combines the error type, message, and underlying error (if any).
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, implementing the unwrap
// interface for error chains.
func (e *APIError) Unwrap() error {
	return e.err
}

// Is implements error matching for errors.Is, allowing type-based
// error matching while ignoring other fields.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WriteError formats and writes an APIError to an http.ResponseWriter.
// It sets the content type and status code, then writes the error as the
// {"error": "..."} JSON body.
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
}

// Error is a drop-in replacement for http.Error that creates and writes
// an APIError with the InternalError type. It automatically includes
// the request ID from the response headers if available.
func Error(w http.ResponseWriter, message string, code int) {
	requestID := w.Header().Get("X-Request-ID")
	err := &APIError{
		Type:      InternalError,
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
	WriteError(w, err)
}

// ErrorWithType is like Error but allows specifying the error type.
// This is useful when you want to influence internal categorization
// (logging, metrics) while maintaining the simple interface of http.Error.
func ErrorWithType(w http.ResponseWriter, message string, errType ErrorType, code int) {
	requestID := w.Header().Get("X-Request-ID")
	err := &APIError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
	WriteError(w, err)
}
