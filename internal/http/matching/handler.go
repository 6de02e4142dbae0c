package matching

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
	"github.com/MrJamesThe3rd/voicebill/internal/http/request"
	"github.com/MrJamesThe3rd/voicebill/internal/matching"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Spoken string `json:"spoken"`
	Label  string `json:"label"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	spoken := r.URL.Query().Get("spoken")
	if spoken == "" {
		httperr.Write(w, r, &scalar.ValidationError{Field: "spoken", Reason: "is required"})
		return
	}

	label, err := h.svc.Suggest(r.Context(), request.AccountID(r), spoken)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, suggestResponse{Spoken: spoken, Label: label})
}

type learnRequest struct {
	Pattern string `json:"pattern" validate:"required"`
	Label   string `json:"label" validate:"required"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	if err := h.svc.Learn(r.Context(), request.AccountID(r), req.Pattern, req.Label); err != nil {
		httperr.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
