package account

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/voicebill/internal/account"
	"github.com/MrJamesThe3rd/voicebill/internal/customer"
	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
	"github.com/MrJamesThe3rd/voicebill/internal/http/request"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
)

type Handler struct {
	svc *account.Service
	now func() time.Time
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.save)
	r.Get("/export", h.export)
	r.Delete("/", h.erase)
}

type profileBody struct {
	CompanyName   string `json:"company_name" validate:"required"`
	Street        string `json:"street"`
	Zip           string `json:"zip"`
	City          string `json:"city"`
	Country       string `json:"country"`
	TaxID         string `json:"tax_id"`
	Email         string `json:"email" validate:"omitempty,email"`
	AccountHolder string `json:"account_holder"`
	IBAN          string `json:"iban"`
	BIC           string `json:"bic"`
}

func toProfileBody(p *account.Profile) profileBody {
	return profileBody{
		CompanyName:   p.CompanyName,
		Street:        p.Street,
		Zip:           p.Zip,
		City:          p.City,
		Country:       p.Country,
		TaxID:         p.TaxID,
		Email:         p.Email,
		AccountHolder: p.AccountHolder,
		IBAN:          p.IBAN,
		BIC:           p.BIC,
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), request.AccountID(r))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toProfileBody(p))
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var req profileBody
	if err := request.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	p := &account.Profile{
		AccountID:     request.AccountID(r),
		CompanyName:   req.CompanyName,
		Street:        req.Street,
		Zip:           req.Zip,
		City:          req.City,
		Country:       req.Country,
		TaxID:         req.TaxID,
		Email:         req.Email,
		AccountHolder: req.AccountHolder,
		IBAN:          req.IBAN,
		BIC:           req.BIC,
	}

	if err := h.svc.Save(r.Context(), p); err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toProfileBody(p))
}

type exportCustomer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

type exportInvoice struct {
	ID         string             `json:"id"`
	Number     string             `json:"number"`
	Status     invoice.Status     `json:"status"`
	ClientName string             `json:"client_name"`
	Items      []invoice.LineItem `json:"items"`
	Total      string             `json:"total"`
	IssueDate  string             `json:"issue_date"`
	DueDate    string             `json:"due_date"`
}

type exportResponse struct {
	Profile    *profileBody     `json:"profile"`
	Customers  []exportCustomer `json:"customers"`
	Invoices   []exportInvoice  `json:"invoices"`
	ExportedAt time.Time        `json:"exported_at"`
}

func toExportResponse(d *account.DataExport) exportResponse {
	resp := exportResponse{
		Customers:  make([]exportCustomer, len(d.Customers)),
		Invoices:   make([]exportInvoice, len(d.Invoices)),
		ExportedAt: d.ExportedAt,
	}

	if d.Profile != nil {
		p := toProfileBody(d.Profile)
		resp.Profile = &p
	}

	for i, c := range d.Customers {
		resp.Customers[i] = toExportCustomer(c)
	}

	for i, inv := range d.Invoices {
		resp.Invoices[i] = exportInvoice{
			ID:         inv.ID.String(),
			Number:     inv.Number,
			Status:     inv.Status,
			ClientName: inv.ClientName,
			Items:      inv.Items,
			Total:      inv.Totals.Rounded().Total.StringFixed(2),
			IssueDate:  inv.IssueDate.Format(time.DateOnly),
			DueDate:    inv.DueDate.Format(time.DateOnly),
		}
	}

	return resp
}

func toExportCustomer(c *customer.Customer) exportCustomer {
	return exportCustomer{
		ID:      c.ID.String(),
		Name:    c.Name,
		Email:   c.Email,
		Address: c.Address,
		TaxID:   c.TaxID,
	}
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Export(r.Context(), request.AccountID(r), h.now())
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	filename := fmt.Sprintf("voicebill-export-%s.json", data.ExportedAt.Format("20060102"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	httperr.JSON(w, http.StatusOK, toExportResponse(data))
}

func (h *Handler) erase(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Erase(r.Context(), request.AccountID(r)); err != nil {
		httperr.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
