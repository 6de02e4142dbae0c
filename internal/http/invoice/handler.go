package invoice

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/voicebill/internal/extraction"
	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
	"github.com/MrJamesThe3rd/voicebill/internal/http/request"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/pipeline"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

const idempotencyHeader = "Idempotency-Key"

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=invoice
type Pipeline interface {
	CreateFromText(ctx context.Context, req pipeline.CreateRequest) (*invoice.Invoice, error)
	CreateFromAudio(ctx context.Context, req pipeline.AudioRequest) (*invoice.Invoice, error)
	Preview(ctx context.Context, text string) (*extraction.Fields, error)
	TransitionInvoice(ctx context.Context, accountID string, id uuid.UUID, target invoice.Status) (*invoice.Invoice, error)
	EditLineItems(ctx context.Context, accountID string, id uuid.UUID, items []invoice.LineItem) (*invoice.Invoice, error)
	Document(ctx context.Context, accountID string, id uuid.UUID) (*pipeline.Rendered, error)
}

type Invoices interface {
	Get(ctx context.Context, accountID string, id uuid.UUID) (*invoice.Invoice, error)
	List(ctx context.Context, accountID string, filter invoice.ListFilter) ([]*invoice.Invoice, error)
	Delete(ctx context.Context, accountID string, id uuid.UUID) error
	Summary(ctx context.Context, accountID string, filter invoice.SummaryFilter) ([]invoice.PeriodSummary, error)
}

type Handler struct {
	pipeline       Pipeline
	invoices       Invoices
	extractLimit   func(http.Handler) http.Handler
	maxUploadBytes int64
	now            func() time.Time
}

type Option func(*Handler)

// WithExtractionLimit guards the endpoints that call the language model.
func WithExtractionLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.extractLimit = mw }
}

func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) { h.maxUploadBytes = n }
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(p Pipeline, invoices Invoices, opts ...Option) *Handler {
	h := &Handler{
		pipeline:       p,
		invoices:       invoices,
		extractLimit:   func(next http.Handler) http.Handler { return next },
		maxUploadBytes: 25 << 20,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.extractLimit)
		r.Post("/from-text", h.createFromText)
		r.Post("/from-audio", h.createFromAudio)
		r.Post("/preview", h.preview)
	})

	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Put("/{id}/items", h.editItems)
	r.Post("/{id}/transitions", h.transition)
	r.Get("/{id}/pdf", h.pdf)
}

type createFromTextRequest struct {
	Text       string     `json:"text" validate:"required"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
}

func (h *Handler) createFromText(w http.ResponseWriter, r *http.Request) {
	var req createFromTextRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	inv, err := h.pipeline.CreateFromText(r.Context(), pipeline.CreateRequest{
		AccountID:      request.AccountID(r),
		CustomerID:     req.CustomerID,
		Text:           req.Text,
		IdempotencyKey: r.Header.Get(idempotencyHeader),
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toResponse(inv, h.now()))
}

func (h *Handler) createFromAudio(w http.ResponseWriter, r *http.Request) {
	audio, filename, err := request.FormFile(w, r, "audio", h.maxUploadBytes)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	customerID, err := formUUID(r, "customer_id")
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	inv, err := h.pipeline.CreateFromAudio(r.Context(), pipeline.AudioRequest{
		AccountID:      request.AccountID(r),
		CustomerID:     customerID,
		Audio:          audio,
		Filename:       filename,
		IdempotencyKey: r.Header.Get(idempotencyHeader),
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toResponse(inv, h.now()))
}

type previewRequest struct {
	Text string `json:"text" validate:"required"`
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	fields, err := h.pipeline.Preview(r.Context(), req.Text)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toFieldsResponse(fields))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r, h.now())
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	invs, err := h.invoices.List(r.Context(), request.AccountID(r), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toResponseList(invs, h.now()))
}

func parseListFilter(r *http.Request, now time.Time) (invoice.ListFilter, error) {
	var (
		filter invoice.ListFilter
		err    error
	)

	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status, ok := invoice.ParseStatus(s)
		if !ok {
			return filter, &scalar.ValidationError{Field: "status", Reason: "is not a known invoice status"}
		}

		filter.Status = &status
	}

	if s := q.Get("overdue"); s != "" {
		overdue, err := strconv.ParseBool(s)
		if err != nil {
			return filter, &scalar.ValidationError{Field: "overdue", Reason: "must be true or false"}
		}

		if overdue {
			filter.OverdueAt = &now
		}
	}

	if filter.CustomerID, err = request.QueryUUID(r, "customer_id"); err != nil {
		return filter, err
	}

	if filter.StartDate, err = request.QueryDate(r, "start_date"); err != nil {
		return filter, err
	}

	if filter.EndDate, err = request.QueryDate(r, "end_date"); err != nil {
		return filter, err
	}

	return filter, nil
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter := invoice.SummaryFilter{Granularity: invoice.Granularity(r.URL.Query().Get("granularity"))}

	var err error

	if filter.StartDate, err = request.QueryDate(r, "start_date"); err != nil {
		httperr.Write(w, r, err)
		return
	}

	if filter.EndDate, err = request.QueryDate(r, "end_date"); err != nil {
		httperr.Write(w, r, err)
		return
	}

	rows, err := h.invoices.Summary(r.Context(), request.AccountID(r), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toSummaryResponse(rows, filter.Granularity))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathUUID(r, "id")
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	inv, err := h.invoices.Get(r.Context(), request.AccountID(r), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toResponse(inv, h.now()))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathUUID(r, "id")
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	if err := h.invoices.Delete(r.Context(), request.AccountID(r), id); err != nil {
		httperr.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type lineItemRequest struct {
	Service     string          `json:"service"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type editItemsRequest struct {
	Items []lineItemRequest `json:"items" validate:"required,min=1"`
}

func (h *Handler) editItems(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathUUID(r, "id")
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	var req editItemsRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	items := make([]invoice.LineItem, len(req.Items))
	for i, li := range req.Items {
		items[i] = invoice.LineItem{
			Service:     li.Service,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			TaxRate:     li.TaxRate,
		}
	}

	inv, err := h.pipeline.EditLineItems(r.Context(), request.AccountID(r), id, items)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toResponse(inv, h.now()))
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid overdue cancelled"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathUUID(r, "id")
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	var req transitionRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	inv, err := h.pipeline.TransitionInvoice(r.Context(), request.AccountID(r), id, invoice.Status(req.Status))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toResponse(inv, h.now()))
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	id, err := request.PathUUID(r, "id")
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	doc, err := h.pipeline.Document(r.Context(), request.AccountID(r), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(doc.Data)
}

func formUUID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.FormValue(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, &scalar.ValidationError{Field: name, Reason: "must be a UUID"}
	}

	return &id, nil
}
