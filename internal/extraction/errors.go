package extraction

import (
	"errors"
	"fmt"
)

// Reason classifies why an extraction failed.
type Reason string

const (
	ReasonEmptyInput   Reason = "empty_input"
	ReasonUpstream     Reason = "upstream_unavailable"
	ReasonMalformed    Reason = "malformed_response"
	ReasonInvalidField Reason = "invalid_field"
)

// ErrMalformedResponse marks a reply that does not match the field schema.
var ErrMalformedResponse = errors.New("response does not match schema")

// Error is returned whenever text could not be turned into Fields.
// Err may be a *scalar.ValidationError; use errors.As to reach it.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extraction failed: %s", e.Reason)
	}

	return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
