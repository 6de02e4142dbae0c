package httperr_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/voicebill/internal/customer"
	"github.com/MrJamesThe3rd/voicebill/internal/extraction"
	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
	"github.com/MrJamesThe3rd/voicebill/internal/idempotency"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence"
)

func TestFromError(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}

	quantity := &scalar.ValidationError{Field: "quantity", Reason: "must be at least 1"}

	tests := []testCase{
		{
			name:       "Validation",
			err:        quantity,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   httperr.CodeValidation,
		},
		{
			name:       "ValidationInsideExtraction",
			err:        &extraction.Error{Reason: extraction.ReasonInvalidField, Err: quantity},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   httperr.CodeValidation,
		},
		{
			name:       "ExtractionMalformed",
			err:        &extraction.Error{Reason: extraction.ReasonMalformed, Err: extraction.ErrMalformedResponse},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   httperr.CodeExtractionFailed,
		},
		{
			name:       "ExtractionUpstream",
			err:        &extraction.Error{Reason: extraction.ReasonUpstream, Err: errors.New("429 from upstream")},
			wantStatus: http.StatusBadGateway,
			wantCode:   httperr.CodeExtractionUnavailable,
		},
		{
			name:       "Allocation",
			err:        &sequence.AllocationError{AccountID: "a", Err: context.DeadlineExceeded},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   httperr.CodeAllocationFailed,
		},
		{
			name:       "InvalidTransition",
			err:        fmt.Errorf("edit: %w", &invoice.InvalidTransitionError{From: invoice.StatusPaid, To: invoice.StatusDraft}),
			wantStatus: http.StatusConflict,
			wantCode:   httperr.CodeInvalidTransition,
		},
		{
			name:       "InvoiceNotFound",
			err:        invoice.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   httperr.CodeNotFound,
		},
		{
			name:       "CustomerNotFound",
			err:        fmt.Errorf("loading: %w", customer.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   httperr.CodeNotFound,
		},
		{
			name:       "Conflict",
			err:        fmt.Errorf("update invoice status: %w", invoice.ErrConflict),
			wantStatus: http.StatusConflict,
			wantCode:   httperr.CodeConflict,
		},
		{
			name:       "IdempotencyInProgress",
			err:        idempotency.ErrInProgress,
			wantStatus: http.StatusConflict,
			wantCode:   httperr.CodeConflict,
		},
		{
			name:       "Timeout",
			err:        fmt.Errorf("creating invoice: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   httperr.CodeTimeout,
		},
		{
			name:       "BadRequest",
			err:        fmt.Errorf("%w: unexpected EOF", httperr.ErrBadRequest),
			wantStatus: http.StatusBadRequest,
			wantCode:   httperr.CodeBadRequest,
		},
		{
			name:       "Internal",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   httperr.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := httperr.FromError(tt.err)

			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantCode, p.Code)
			assert.Equal(t, http.StatusText(tt.wantStatus), p.Title)
		})
	}
}

func TestWrite_NeverLeaksUpstreamText(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/from-text", nil)

	httperr.Write(rec, req, &extraction.Error{
		Reason: extraction.ReasonUpstream,
		Err:    errors.New("sk-secret-key rejected"),
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "sk-secret-key")

	var p httperr.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, httperr.CodeExtractionUnavailable, p.Code)
}

func TestWrite_ValidationCarriesField(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	httperr.Write(rec, req, &scalar.ValidationError{Field: "quantity", Reason: "must be at least 1"})

	var p httperr.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "quantity", p.Field)
	assert.Equal(t, "invalid quantity: must be at least 1", p.Detail)
}
