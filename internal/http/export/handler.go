package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/voicebill/internal/export"
	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
	"github.com/MrJamesThe3rd/voicebill/internal/http/request"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

func (req exportRequest) filter() (export.Filter, error) {
	var f export.Filter

	for _, d := range []struct {
		field string
		value string
		dst   **time.Time
	}{
		{"start_date", req.StartDate, &f.StartDate},
		{"end_date", req.EndDate, &f.EndDate},
	} {
		if d.value == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, d.value)
		if err != nil {
			return f, fmt.Errorf("%w: %s must be a date in the form YYYY-MM-DD", httperr.ErrBadRequest, d.field)
		}

		*d.dst = &t
	}

	return f, nil
}

type invoiceResponse struct {
	ID         uuid.UUID      `json:"id"`
	Number     string         `json:"number"`
	ClientName string         `json:"client_name"`
	Status     invoice.Status `json:"status"`
	Total      string         `json:"total"`
	IssueDate  string         `json:"issue_date"`
	File       string         `json:"file,omitempty"`
}

type exportMetadataResponse struct {
	Invoices []invoiceResponse `json:"invoices"`
	Summary  string            `json:"summary"`
}

func (h *Handler) toInvoiceResponse(item export.Item) invoiceResponse {
	resp := invoiceResponse{
		ID:         item.Invoice.ID,
		Number:     item.Invoice.Number,
		ClientName: item.Invoice.ClientName,
		Status:     item.Invoice.EffectiveStatus(h.now()),
		Total:      item.Invoice.Totals.Rounded().Total.StringFixed(2),
		IssueDate:  item.Invoice.IssueDate.Format(time.DateOnly),
	}

	if item.FilePath != "" {
		resp.File = filepath.Base(item.FilePath)
	}

	return resp
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) (string, []export.Item, bool) {
	var req exportRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return "", nil, false
	}

	filter, err := req.filter()
	if err != nil {
		httperr.Write(w, r, err)
		return "", nil, false
	}

	tmpDir, err := os.MkdirTemp("", "voicebill-export-*")
	if err != nil {
		httperr.Write(w, r, fmt.Errorf("creating export directory: %w", err))
		return "", nil, false
	}

	items, err := h.svc.Export(r.Context(), request.AccountID(r), filter, tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		httperr.Write(w, r, err)

		return "", nil, false
	}

	return tmpDir, items, true
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	tmpDir, items, ok := h.run(w, r)
	if !ok {
		return
	}
	defer os.RemoveAll(tmpDir)

	resp := exportMetadataResponse{
		Invoices: make([]invoiceResponse, 0, len(items)),
		Summary:  h.svc.Summary(items),
	}

	for _, item := range items {
		resp.Invoices = append(resp.Invoices, h.toInvoiceResponse(item))
	}

	httperr.JSON(w, http.StatusOK, resp)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	tmpDir, items, ok := h.run(w, r)
	if !ok {
		return
	}
	defer os.RemoveAll(tmpDir)

	summary := h.svc.Summary(items)
	if err := os.WriteFile(filepath.Join(tmpDir, export.SummaryFilename), []byte(summary), 0o644); err != nil {
		httperr.Write(w, r, fmt.Errorf("writing summary: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"rechnungen_%s.zip\"", h.now().Format("20060102")))

	if err := export.WriteZip(w, tmpDir); err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
