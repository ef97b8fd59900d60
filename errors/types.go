package errors

import (
	"net/http"
)

// NewError creates a new APIError with the given parameters.
// It is a general-purpose constructor that allows full control over
// the error's fields. For most cases, you should use one of the
// specialized constructors below.
//
// Example:
//
//	err := NewError(ProviderError, "Failed to get response from AI.", 500, "req_123", nil, callErr)
func NewError(errType ErrorType, message string, code int, requestID string, details map[string]interface{}, err error) *APIError {
	return &APIError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Details:   details,
		err:       err,
	}
}

// NewValidationError creates a validation error with appropriate defaults.
// Use this for any client input failures, such as:
//   - Malformed request bodies
//   - Missing required fields
//   - Unknown industry keys
//   - Continuation on a session that was never started
//
// Example:
//
//	err := NewValidationError("req_123", "Chat not initiated.", nil)
func NewValidationError(requestID, message string, validationDetails map[string]interface{}) *APIError {
	return &APIError{
		Type:      ValidationError,
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
		Details:   validationDetails,
	}
}

// NewProviderError creates a provider error with appropriate defaults.
// Use this when the completion API path fails for any reason: network
// errors, non-2xx responses, malformed completion payloads, timeouts.
// The message is what the client sees, so callers pass the single
// uniform completion-failure message.
//
// Example:
//
//	err := NewProviderError("req_123", "Failed to get response from AI.", callErr)
func NewProviderError(requestID string, message string, err error) *APIError {
	return &APIError{
		Type:      ProviderError,
		Message:   message,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}

// NewConfigError creates a configuration error. These are fatal: they are
// logged and abort startup before the server accepts traffic.
func NewConfigError(message string, err error) *APIError {
	return &APIError{
		Type:    ConfigError,
		Message: message,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewInternalError creates an internal server error with appropriate defaults.
// Use this for unexpected errors that are not covered by other error types:
//   - Panics
//   - Response encoding failures
//   - Unexpected system failures
//
// Example:
//
//	err := NewInternalError("req_123", encodeErr)
func NewInternalError(requestID string, err error) *APIError {
	return &APIError{
		Type:      InternalError,
		Message:   "An internal error occurred",
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}
