package view

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/voicebill/internal/extraction"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/pipeline"
)

type fakeDictation struct {
	requests []pipeline.CreateRequest
	err      error
}

func (f *fakeDictation) Preview(_ context.Context, _ string) (*extraction.Fields, error) {
	return &extraction.Fields{
		ClientName:  "Max Mustermann",
		Service:     "Massage",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("60"),
		TaxRate:     decimal.RequireFromString("0.19"),
		InvoiceDate: time.Date(2025, time.May, 16, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeDictation) CreateFromText(_ context.Context, req pipeline.CreateRequest) (*invoice.Invoice, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}

	return &invoice.Invoice{Number: "0004", ClientName: "Max Mustermann"}, nil
}

func reviewing(t *testing.T, d Dictation) DictateModel {
	t.Helper()

	m := NewDictateModel(d, "acct-1")
	m.text = "Massage für Herrn Mustermann, zwei Stunden à 60 Euro"

	fields, err := d.Preview(context.Background(), m.text)
	require.NoError(t, err)

	next, _ := m.Update(previewMsg{fields: fields})

	return next.(DictateModel)
}

func enter(t *testing.T, m DictateModel) DictateModel {
	t.Helper()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m = next.(DictateModel)
	require.Equal(t, dictateStateCreating, m.state)

	next, _ = m.Update(m.createCmd(m.text, m.key)())

	return next.(DictateModel)
}

func TestDictateModel_CreatesDraft(t *testing.T) {
	d := &fakeDictation{}

	m := enter(t, reviewing(t, d))

	assert.Equal(t, dictateStateResult, m.state)
	assert.Equal(t, "0004", m.invoice.Number)
	require.Len(t, d.requests, 1)
	assert.Equal(t, "acct-1", d.requests[0].AccountID)
	assert.NotEmpty(t, d.requests[0].IdempotencyKey)
	assert.Contains(t, m.View(), "Draft 0004 created")
}

func TestDictateModel_RetryReusesIdempotencyKey(t *testing.T) {
	d := &fakeDictation{err: errors.New("db down")}

	m := enter(t, reviewing(t, d))
	require.Equal(t, dictateStateReview, m.state)
	require.Error(t, m.err)

	d.err = nil
	m = enter(t, m)

	require.Len(t, d.requests, 2)
	assert.Equal(t, d.requests[0].IdempotencyKey, d.requests[1].IdempotencyKey)
	assert.Equal(t, dictateStateResult, m.state)
}

func TestDictateModel_ExtractionErrorHidesUpstreamText(t *testing.T) {
	m := NewDictateModel(&fakeDictation{}, "acct-1")

	next, _ := m.Update(previewMsg{err: &extraction.Error{
		Reason: extraction.ReasonUpstream,
		Err:    errors.New("openai: 500 secret-internal-detail"),
	}})
	m = next.(DictateModel)

	assert.Equal(t, dictateStateReview, m.state)
	assert.NotContains(t, m.View(), "secret-internal-detail")
}
