// Package errors provides error response utilities.
package errors

import (
	"errors"
)

// ErrorResponse is the client-facing error body. It mirrors the wire
// contract exactly: a single "error" key holding the message.
type ErrorResponse struct {
	Message string `json:"error"`
}

// As is a wrapper around errors.As for better error type assertion
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a wrapper around errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}
