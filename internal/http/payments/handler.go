package payments

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
	"github.com/MrJamesThe3rd/voicebill/internal/http/request"
	"github.com/MrJamesThe3rd/voicebill/internal/payments"
)

type Handler struct {
	svc            *payments.Service
	maxUploadBytes int64
}

func NewHandler(svc *payments.Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import", h.importStatement)
}

// importStatement reconciles an uploaded bank export against the open invoices
// and marks every matched one as paid.
func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	data, _, err := request.FormFile(w, r, "file", h.maxUploadBytes)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	report, err := h.svc.Reconcile(r.Context(), request.AccountID(r), bytes.NewReader(data))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, report)
}
