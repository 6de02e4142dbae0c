package view

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/voicebill/internal/document"
	"github.com/MrJamesThe3rd/voicebill/internal/http/httperr"
)

const dbTimeout = 5 * time.Second

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

// FormatAmount formats a money amount the way it is printed on the invoice.
func FormatAmount(d decimal.Decimal) string {
	return document.FormatAmount(d)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

// ErrorText is the message shown for err. Unclassified errors only go to the log.
func ErrorText(err error) string {
	p := httperr.FromError(err)
	if p.Detail != "" {
		return p.Detail
	}

	slog.Error("tui action failed", "error", err)

	return "unexpected error, see the log file"
}
