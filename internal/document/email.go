package document

import (
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/voicebill/internal/account"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
)

// Filename is the attachment name used for an invoice PDF.
func Filename(inv *invoice.Invoice) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, inv.Number)

	return fmt.Sprintf("Rechnung_%s.pdf", safe)
}

// EmailSubject is the subject line of the delivery email.
func EmailSubject(inv *invoice.Invoice) string {
	return "Rechnung " + inv.Number
}

// EmailBody is the plain-text body sent along with the PDF.
func EmailBody(inv *invoice.Invoice, profile *account.Profile) string {
	totals := inv.Totals.Rounded()

	var sb strings.Builder

	fmt.Fprintf(&sb, "Guten Tag %s,\n\n", inv.ClientName)
	fmt.Fprintf(&sb, "anbei erhalten Sie die Rechnung %s vom %s.\n\n", inv.Number, inv.IssueDate.Format(dateLayout))
	fmt.Fprintf(&sb, "Nettobetrag:     %s\n", FormatAmount(totals.Subtotal))
	fmt.Fprintf(&sb, "Umsatzsteuer:    %s\n", FormatAmount(totals.TaxAmount))
	fmt.Fprintf(&sb, "Gesamtbetrag:    %s\n\n", FormatAmount(totals.Total))
	fmt.Fprintf(&sb, "Bitte begleichen Sie den Betrag bis zum %s.\n\n", inv.DueDate.Format(dateLayout))
	sb.WriteString("Mit freundlichen Grüßen\n")

	if profile != nil {
		sb.WriteString(profile.CompanyName)
		sb.WriteString("\n")
	}

	return sb.String()
}
