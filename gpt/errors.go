package gpt

import (
	"fmt"
)

// Finish reasons the API is known to report
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)

// ErrorCause is the coarse classification of a provider-reported failure,
// used to pick the user-facing message. Full detail goes to the log only.
type ErrorCause int

const (
	ErrorCauseUnknown ErrorCause = iota
	ErrorCauseQuota              // provider account out of credit
	ErrorCauseServer             // transient provider-side failure
	ErrorCauseRateLimited
)

// APIError is a failure reported by the completion provider itself, as
// opposed to a transport or decoding failure.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion API error (%s): %s", e.Type, e.Message)
}

// Cause classifies the provider's error type string
func (e *APIError) Cause() ErrorCause {
	switch e.Type {
	case "insufficient_quota":
		return ErrorCauseQuota
	case "server_error":
		return ErrorCauseServer
	case "requests":
		return ErrorCauseRateLimited
	default:
		return ErrorCauseUnknown
	}
}
