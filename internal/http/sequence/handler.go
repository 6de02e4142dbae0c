package sequence

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
	"github.com/MrJamesThe3rd/voicebill/internal/http/request"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence"
)

type Handler struct {
	allocator *sequence.Allocator
}

func NewHandler(allocator *sequence.Allocator) *Handler {
	return &Handler{allocator: allocator}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.current)
	r.Put("/prefix", h.setPrefix)
}

type sequenceResponse struct {
	Last   int64  `json:"last"`
	Prefix string `json:"prefix"`
	// Next is how the following invoice will be numbered.
	Next string `json:"next"`
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	n, err := h.allocator.Current(r.Context(), request.AccountID(r))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	next := sequence.Number{Value: n.Value + 1, Prefix: n.Prefix}

	httperr.JSON(w, http.StatusOK, sequenceResponse{Last: n.Value, Prefix: n.Prefix, Next: next.Display()})
}

type prefixRequest struct {
	Prefix string `json:"prefix"`
}

func (h *Handler) setPrefix(w http.ResponseWriter, r *http.Request) {
	var req prefixRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	if err := h.allocator.SetPrefix(r.Context(), request.AccountID(r), req.Prefix); err != nil {
		httperr.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
