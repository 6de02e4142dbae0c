// Package document renders invoices as German A4 PDFs and composes the
// accompanying email text.
package document

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/voicebill/internal/account"
	"github.com/MrJamesThe3rd/voicebill/internal/customer"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

const (
	fontFamily = "Helvetica"
	marginLeft = 20.0
	pageWidth  = 170.0
	lineHeight = 5.0
)

// column widths of the item table: Pos, Leistung, Menge, Einzelpreis, USt., Betrag
var columns = []float64{12, 70, 18, 28, 14, 28}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the PDF for inv. The issuer profile is mandatory; cust may be
// nil, in which case only the extracted client name is printed.
func (r *Renderer) Render(inv *invoice.Invoice, profile *account.Profile, cust *customer.Customer) ([]byte, error) {
	if profile == nil {
		return nil, &scalar.ValidationError{Field: "profile", Reason: "an account profile is required to issue invoices"}
	}

	if inv.Number == "" {
		return nil, &scalar.ValidationError{Field: "number", Reason: "invoice has no number"}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, 20, marginLeft)
	pdf.SetAutoPageBreak(true, 25)
	pdf.SetCreationDate(inv.CreatedAt)
	pdf.SetTitle("Rechnung "+inv.Number, true)
	pdf.SetAuthor(profile.CompanyName, true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetFont(fontFamily, "", 7)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(pageWidth, 4, tr(footerLine(profile)), "T", 1, "C", false, 0, "")
		pdf.CellFormat(pageWidth, 4, tr(bankLine(profile)), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// Sender line above the address window.
	pdf.SetFont(fontFamily, "U", 7)
	pdf.CellFormat(pageWidth, 4, tr(senderLine(profile)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "", 10)

	for _, line := range recipientLines(inv, cust) {
		pdf.CellFormat(90, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}

	pdf.Ln(12)

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(pageWidth, 8, tr("Rechnung"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "", 10)
	meta := [][2]string{
		{"Rechnungsnummer:", inv.Number},
		{"Rechnungsdatum:", inv.IssueDate.Format(dateLayout)},
		{"Leistungsdatum:", inv.IssueDate.Format(dateLayout)},
		{"Fällig am:", inv.DueDate.Format(dateLayout)},
	}

	if profile.TaxID != "" {
		meta = append(meta, [2]string{"Steuernummer:", profile.TaxID})
	}

	for _, m := range meta {
		pdf.CellFormat(40, lineHeight, tr(m[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(60, lineHeight, tr(m[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)

	writeItemTable(pdf, tr, inv.Items)
	writeTotals(pdf, tr, inv)

	pdf.Ln(10)
	pdf.SetFont(fontFamily, "", 10)
	pdf.MultiCell(pageWidth, lineHeight, tr(paymentNote(inv, profile)), "", "L", false)

	if inv.Notes != "" {
		pdf.Ln(4)
		pdf.MultiCell(pageWidth, lineHeight, tr(inv.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering invoice pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func writeItemTable(pdf *gofpdf.Fpdf, tr func(string) string, items []invoice.LineItem) {
	headers := []string{"Pos.", "Leistung", "Menge", "Einzelpreis", "USt.", "Betrag"}
	aligns := []string{"L", "L", "R", "R", "R", "R"}

	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetFillColor(235, 235, 235)

	for i, h := range headers {
		pdf.CellFormat(columns[i], 7, tr(h), "B", 0, aligns[i], true, 0, "")
	}

	pdf.Ln(-1)
	pdf.SetFont(fontFamily, "", 9)

	for i, li := range items {
		service := li.Service
		if li.Description != "" {
			service += " - " + li.Description
		}

		row := []string{
			fmt.Sprintf("%d", i+1),
			service,
			formatQuantity(li.Quantity),
			FormatAmount(li.UnitPrice),
			FormatRate(li.TaxRate),
			FormatAmount(li.LineTotal()),
		}

		for j, cell := range row {
			pdf.CellFormat(columns[j], 6, tr(cell), "", 0, aligns[j], false, 0, "")
		}

		pdf.Ln(-1)
	}
}

func writeTotals(pdf *gofpdf.Fpdf, tr func(string) string, inv *invoice.Invoice) {
	totals := inv.Totals.Rounded()
	labelWidth := columns[0] + columns[1] + columns[2] + columns[3] + columns[4]

	rows := [][2]string{
		{"Nettobetrag", FormatAmount(totals.Subtotal)},
		{"zzgl. Umsatzsteuer (" + strings.Join(rates(inv.Items), ", ") + ")", FormatAmount(totals.TaxAmount)},
	}

	pdf.SetFont(fontFamily, "", 9)

	for i, row := range rows {
		border := ""
		if i == 0 {
			border = "T"
		}

		pdf.CellFormat(labelWidth, 6, tr(row[0]), border, 0, "R", false, 0, "")
		pdf.CellFormat(columns[5], 6, tr(row[1]), border, 1, "R", false, 0, "")
	}

	pdf.SetFont(fontFamily, "B", 10)
	pdf.CellFormat(labelWidth, 7, tr("Rechnungsbetrag"), "T", 0, "R", false, 0, "")
	pdf.CellFormat(columns[5], 7, tr(FormatAmount(totals.Total)), "T", 1, "R", false, 0, "")
}

func rates(items []invoice.LineItem) []string {
	var seen []decimal.Decimal

	for _, li := range items {
		if !slices.ContainsFunc(seen, li.TaxRate.Equal) {
			seen = append(seen, li.TaxRate)
		}
	}

	slices.SortFunc(seen, func(a, b decimal.Decimal) int { return b.Cmp(a) })

	out := make([]string, len(seen))
	for i, r := range seen {
		out[i] = FormatRate(r)
	}

	return out
}

func recipientLines(inv *invoice.Invoice, cust *customer.Customer) []string {
	if cust == nil {
		return []string{inv.ClientName}
	}

	lines := []string{cust.Name}

	for line := range strings.SplitSeq(cust.Address, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

func senderLine(p *account.Profile) string {
	return strings.Join(nonEmpty(p.CompanyName, p.Street, strings.TrimSpace(p.Zip+" "+p.City)), " · ")
}

func footerLine(p *account.Profile) string {
	return strings.Join(nonEmpty(p.CompanyName, p.Street, strings.TrimSpace(p.Zip+" "+p.City), p.Country, p.Email), " · ")
}

func bankLine(p *account.Profile) string {
	var parts []string
	if p.AccountHolder != "" {
		parts = append(parts, "Kontoinhaber: "+p.AccountHolder)
	}

	if p.IBAN != "" {
		parts = append(parts, "IBAN: "+p.IBAN)
	}

	if p.BIC != "" {
		parts = append(parts, "BIC: "+p.BIC)
	}

	return strings.Join(parts, " · ")
}

func paymentNote(inv *invoice.Invoice, p *account.Profile) string {
	note := fmt.Sprintf("Bitte überweisen Sie den Rechnungsbetrag bis zum %s unter Angabe der Rechnungsnummer %s",
		inv.DueDate.Format(dateLayout), inv.Number)

	if p.IBAN != "" {
		note += " auf das Konto " + p.IBAN
	}

	return note + ".\n\nVielen Dank für Ihren Auftrag!"
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]

	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}

	return out
}
