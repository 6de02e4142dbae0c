// Package httperr maps domain errors to RFC 7807 problem responses with a
// stable machine-readable code.
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/voicebill/internal/account"
	"github.com/MrJamesThe3rd/voicebill/internal/auth"
	"github.com/MrJamesThe3rd/voicebill/internal/customer"
	"github.com/MrJamesThe3rd/voicebill/internal/extraction"
	"github.com/MrJamesThe3rd/voicebill/internal/idempotency"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/pipeline"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence"
)

const (
	CodeValidation            = "validation_failed"
	CodeExtractionFailed      = "extraction_failed"
	CodeExtractionUnavailable = "extraction_unavailable"
	CodeAllocationFailed      = "allocation_failed"
	CodeInvalidTransition     = "invalid_transition"
	CodeNotFound              = "not_found"
	CodeConflict              = "conflict"
	CodeTimeout               = "timeout"
	CodeInternal              = "internal"
	CodeUnauthorized          = "unauthorized"
	CodeBadRequest            = "bad_request"
	CodePayloadTooLarge       = "payload_too_large"
	CodeRateLimited           = "rate_limited"
	CodeNotImplemented        = "not_implemented"
)

// ErrBadRequest marks a request that could not be decoded.
var ErrBadRequest = errors.New("malformed request")

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code"`
	Field  string `json:"field,omitempty"`
}

func newProblem(status int, code, detail string) Problem {
	return Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Code:   code,
	}
}

// FromError classifies err. The detail is always fixed wording or built from
// our own values; error strings from dependencies never reach the client.
func FromError(err error) Problem {
	var (
		validationErr *scalar.ValidationError
		extractionErr *extraction.Error
		allocationErr *sequence.AllocationError
		transitionErr *invoice.InvalidTransitionError
		maxBytesErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErr):
		p := newProblem(http.StatusUnprocessableEntity, CodeValidation, validationErr.Error())
		p.Field = validationErr.Field

		return p
	case errors.As(err, &extractionErr):
		if extractionErr.Reason == extraction.ReasonUpstream {
			return newProblem(http.StatusBadGateway, CodeExtractionUnavailable,
				"the text understanding service is currently unavailable")
		}

		return newProblem(http.StatusUnprocessableEntity, CodeExtractionFailed,
			fmt.Sprintf("no invoice could be extracted from the text (%s)", extractionErr.Reason))
	case errors.As(err, &allocationErr):
		return newProblem(http.StatusServiceUnavailable, CodeAllocationFailed,
			"no invoice number could be allocated, please retry")
	case errors.As(err, &transitionErr):
		detail := fmt.Sprintf("an invoice cannot move from %s to %s", transitionErr.From, transitionErr.To)
		if transitionErr.Reason != "" {
			detail += ": " + transitionErr.Reason
		}

		return newProblem(http.StatusConflict, CodeInvalidTransition, detail)
	case errors.Is(err, invoice.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, account.ErrNotFound):
		return newProblem(http.StatusNotFound, CodeNotFound, "the requested resource does not exist")
	case errors.Is(err, invoice.ErrConflict), errors.Is(err, idempotency.ErrInProgress):
		return newProblem(http.StatusConflict, CodeConflict, "the resource was changed concurrently, please retry")
	case errors.Is(err, auth.ErrUnauthorized):
		return newProblem(http.StatusUnauthorized, CodeUnauthorized, "a valid bearer token is required")
	case errors.Is(err, ErrBadRequest):
		return newProblem(http.StatusBadRequest, CodeBadRequest, "the request could not be decoded")
	case errors.As(err, &maxBytesErr):
		return newProblem(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "the request body is too large")
	case errors.Is(err, pipeline.ErrTranscriptionDisabled):
		return newProblem(http.StatusNotImplemented, CodeNotImplemented, "audio transcription is not configured")
	case errors.Is(err, context.DeadlineExceeded):
		return newProblem(http.StatusGatewayTimeout, CodeTimeout, "the request took too long")
	default:
		return newProblem(http.StatusInternalServerError, CodeInternal, "")
	}
}

// Write sends the problem for err. Server-side failures are logged with the
// original error.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	p := FromError(err)

	if p.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", p.Code,
			"error", err,
		)
	}

	WriteProblem(w, p)
}

func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)

	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// RateLimited is the response of the extraction rate limiter.
func RateLimited(w http.ResponseWriter, _ *http.Request) {
	WriteProblem(w, newProblem(http.StatusTooManyRequests, CodeRateLimited, "too many extraction requests"))
}

// JSON sends v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
