// Package extraction turns a free-text dictation into validated invoice fields
// with the help of a text-understanding model.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/voicebill/internal/llm"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

// maxExtractionRetries bounds the corrective follow-ups sent after a malformed reply.
const maxExtractionRetries = 1

// Field keys the model must return.
const (
	keyClient      = "client"
	keyService     = "service"
	keyQuantity    = "quantity"
	keyUnitPrice   = "unit_price"
	keyTaxRate     = "tax_rate"
	keyInvoiceDate = "invoice_date"
	keyCurrency    = "currency"
	keyLanguage    = "language"
)

var schemaKeys = []string{
	keyClient, keyService, keyQuantity, keyUnitPrice,
	keyTaxRate, keyInvoiceDate, keyCurrency, keyLanguage,
}

// Fields is a fully validated extraction result.
type Fields struct {
	ClientName  string
	Service     string
	Quantity    int64
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	InvoiceDate time.Time
	Currency    string
	Language    string
}

//go:generate mockgen -source=extractor.go -destination=completer_mock.go -package=extraction
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

type Extractor struct {
	completer Completer
}

func NewExtractor(completer Completer) *Extractor {
	return &Extractor{completer: completer}
}

// Extract asks the model for the invoice fields contained in text. Relative
// dates are resolved against now. A malformed reply is retried once with a
// corrective instruction; invalid field values are never retried.
func (e *Extractor) Extract(ctx context.Context, text string, now time.Time) (*Fields, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &Error{Reason: ReasonEmptyInput}
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: text},
	}

	var lastErr error

	for attempt := 0; attempt <= maxExtractionRetries; attempt++ {
		reply, err := e.completer.Complete(ctx, messages)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("extracting fields: %w", ctxErr)
			}

			return nil, &Error{Reason: ReasonUpstream, Err: err}
		}

		fields, err := parseFields(reply, now)
		if err == nil {
			return fields, nil
		}

		if !errors.Is(err, ErrMalformedResponse) {
			return nil, &Error{Reason: ReasonInvalidField, Err: err}
		}

		lastErr = err

		slog.Warn("extraction reply did not match schema", "attempt", attempt+1, "error", err)

		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: reply},
			llm.Message{Role: llm.RoleUser, Content: correctionPrompt},
		)
	}

	return nil, &Error{Reason: ReasonMalformed, Err: lastErr}
}

// parseFields decodes reply into Fields. Schema problems wrap ErrMalformedResponse,
// value problems are returned as *scalar.ValidationError.
func parseFields(reply string, now time.Time) (*Fields, error) {
	raw, err := decodeObject(stripCodeFence(reply))
	if err != nil {
		return nil, err
	}

	for key := range raw {
		if !slices.Contains(schemaKeys, key) {
			return nil, fmt.Errorf("%w: unexpected key %q", ErrMalformedResponse, key)
		}
	}

	values := make(map[string]any, len(schemaKeys))

	for _, key := range schemaKeys {
		msg, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrMalformedResponse, key)
		}

		var v any

		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()

		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrMalformedResponse, key, err)
		}

		if v == nil {
			return nil, fmt.Errorf("%w: key %q is null", ErrMalformedResponse, key)
		}

		values[key] = v
	}

	var f Fields

	if f.ClientName, err = scalar.Text(keyClient, values[keyClient]); err != nil {
		return nil, err
	}

	if f.Service, err = scalar.Text(keyService, values[keyService]); err != nil {
		return nil, err
	}

	if f.Quantity, err = scalar.Quantity(values[keyQuantity]); err != nil {
		return nil, err
	}

	if f.UnitPrice, err = scalar.UnitPrice(values[keyUnitPrice]); err != nil {
		return nil, err
	}

	if f.TaxRate, err = scalar.TaxRate(values[keyTaxRate]); err != nil {
		return nil, err
	}

	if f.InvoiceDate, err = scalar.Date(values[keyInvoiceDate], now); err != nil {
		return nil, err
	}

	if f.Currency, err = scalar.Currency(values[keyCurrency]); err != nil {
		return nil, err
	}

	if f.Language, err = scalar.Language(values[keyLanguage]); err != nil {
		return nil, err
	}

	return &f, nil
}

// decodeObject requires reply to be exactly one JSON object.
func decodeObject(reply string) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(reply))

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if raw == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedResponse)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing content", ErrMalformedResponse)
	}

	return raw, nil
}

// stripCodeFence removes a markdown fence such as ```json ... ``` around the reply.
func stripCodeFence(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}

	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
