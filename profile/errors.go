package profile

import "errors"

var (
	// ErrUnknownIndustry is returned when no profile is configured for the
	// requested industry key
	ErrUnknownIndustry = errors.New("unknown industry")
)
