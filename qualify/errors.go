package qualify

import "errors"

var (
	// ErrMalformedCompletion means the provider returned text that does not
	// parse as the required {reply, classification, metadata} JSON object.
	ErrMalformedCompletion = errors.New("malformed completion")

	// ErrCompletionTimeout means the completion call exceeded its deadline.
	ErrCompletionTimeout = errors.New("completion timed out")
)
