package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/voicebill/internal/extraction"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
)

type lineItemResponse struct {
	Service     string `json:"service"`
	Description string `json:"description,omitempty"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TaxRate     string `json:"tax_rate"`
	LineTotal   string `json:"line_total"`
}

type invoiceResponse struct {
	ID          uuid.UUID          `json:"id"`
	Number      string             `json:"number"`
	Status      invoice.Status     `json:"status"`
	CustomerID  *uuid.UUID         `json:"customer_id,omitempty"`
	ClientName  string             `json:"client_name"`
	Items       []lineItemResponse `json:"items"`
	Subtotal    string             `json:"subtotal"`
	TaxAmount   string             `json:"tax_amount"`
	Total       string             `json:"total"`
	Currency    string             `json:"currency"`
	Language    string             `json:"language"`
	IssueDate   string             `json:"issue_date"`
	DueDate     string             `json:"due_date"`
	Notes       string             `json:"notes,omitempty"`
	SentAt      *time.Time         `json:"sent_at,omitempty"`
	PaidAt      *time.Time         `json:"paid_at,omitempty"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// toResponse reports the status an observer sees at now, so an unpaid
// invoice past its due date shows as overdue.
func toResponse(inv *invoice.Invoice, now time.Time) invoiceResponse {
	totals := inv.Totals.Rounded()

	items := make([]lineItemResponse, len(inv.Items))
	for i, li := range inv.Items {
		items[i] = lineItemResponse{
			Service:     li.Service,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice.StringFixed(2),
			TaxRate:     li.TaxRate.String(),
			LineTotal:   li.LineTotal().StringFixed(2),
		}
	}

	return invoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		Status:      inv.EffectiveStatus(now),
		CustomerID:  inv.CustomerID,
		ClientName:  inv.ClientName,
		Items:       items,
		Subtotal:    totals.Subtotal.StringFixed(2),
		TaxAmount:   totals.TaxAmount.StringFixed(2),
		Total:       totals.Total.StringFixed(2),
		Currency:    inv.Currency,
		Language:    inv.Language,
		IssueDate:   inv.IssueDate.Format(time.DateOnly),
		DueDate:     inv.DueDate.Format(time.DateOnly),
		Notes:       inv.Notes,
		SentAt:      inv.SentAt,
		PaidAt:      inv.PaidAt,
		CancelledAt: inv.CancelledAt,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}

func toResponseList(invs []*invoice.Invoice, now time.Time) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv, now)
	}

	return resp
}

type fieldsResponse struct {
	Client      string `json:"client"`
	Service     string `json:"service"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TaxRate     string `json:"tax_rate"`
	InvoiceDate string `json:"invoice_date"`
	Currency    string `json:"currency"`
	Language    string `json:"language"`
}

func toFieldsResponse(f *extraction.Fields) fieldsResponse {
	return fieldsResponse{
		Client:      f.ClientName,
		Service:     f.Service,
		Quantity:    f.Quantity,
		UnitPrice:   f.UnitPrice.StringFixed(2),
		TaxRate:     f.TaxRate.String(),
		InvoiceDate: f.InvoiceDate.Format(time.DateOnly),
		Currency:    f.Currency,
		Language:    f.Language,
	}
}

type summaryResponse struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
	Total  string `json:"total"`
	Paid   string `json:"paid"`
	Unpaid string `json:"unpaid"`
}

func toSummaryResponse(rows []invoice.PeriodSummary, g invoice.Granularity) []summaryResponse {
	layout := "2006-01"
	if g == invoice.GranularityYear {
		layout = "2006"
	}

	resp := make([]summaryResponse, len(rows))
	for i, row := range rows {
		resp[i] = summaryResponse{
			Period: row.Period.Format(layout),
			Count:  row.Count,
			Total:  row.Total.StringFixed(2),
			Paid:   row.Paid.StringFixed(2),
			Unpaid: row.Unpaid.StringFixed(2),
		}
	}

	return resp
}
