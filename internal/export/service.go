// Package export renders the invoices of a period to disk for the accountant.
package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/voicebill/internal/document"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/pipeline"
)

const SummaryFilename = "uebersicht.txt"

var statusLabels = map[invoice.Status]string{
	invoice.StatusDraft:     "Entwurf",
	invoice.StatusSent:      "versendet",
	invoice.StatusPaid:      "bezahlt",
	invoice.StatusOverdue:   "überfällig",
	invoice.StatusCancelled: "storniert",
}

//go:generate mockgen -source=service.go -destination=service_mock.go -package=export
type Invoices interface {
	List(ctx context.Context, accountID string, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

type Documents interface {
	Document(ctx context.Context, accountID string, id uuid.UUID) (*pipeline.Rendered, error)
}

// Item is one exported invoice. FilePath is empty for cancelled invoices.
type Item struct {
	Invoice  *invoice.Invoice
	FilePath string
}

type Filter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

type Service struct {
	invoices  Invoices
	documents Documents
	now       func() time.Time
}

func NewService(invoices Invoices, documents Documents) *Service {
	return &Service{invoices: invoices, documents: documents, now: time.Now}
}

// Export writes the PDF of every invoice issued in the filter's range to outputDir.
func (s *Service) Export(ctx context.Context, accountID string, filter Filter, outputDir string) ([]Item, error) {
	invoices, err := s.invoices.List(ctx, accountID, invoice.ListFilter{
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	})
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(invoices))

	for _, inv := range invoices {
		item := Item{Invoice: inv}

		if inv.Status != invoice.StatusCancelled {
			path, err := s.writeDocument(ctx, accountID, inv, outputDir)
			if err != nil {
				return nil, fmt.Errorf("rendering invoice %s: %w", inv.Number, err)
			}

			item.FilePath = path
		}

		items = append(items, item)
	}

	return items, nil
}

func (s *Service) writeDocument(ctx context.Context, accountID string, inv *invoice.Invoice, dir string) (string, error) {
	rendered, err := s.documents.Document(ctx, accountID, inv.ID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.Base(rendered.Filename))

	if err := os.WriteFile(path, rendered.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return path, nil
}

// Summary lists the exported invoices, one per line, followed by the total
// of all invoices that were not cancelled.
func (s *Service) Summary(items []Item) string {
	var (
		sb    strings.Builder
		total = decimal.Zero
		now   = s.now()
	)

	for _, item := range items {
		inv := item.Invoice
		status := inv.EffectiveStatus(now)
		amount := inv.Totals.Rounded().Total

		file := "keine Datei"
		if item.FilePath != "" {
			file = filepath.Base(item.FilePath)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s | %s | %s\n",
			inv.IssueDate.Format("02.01.2006"),
			inv.Number,
			inv.ClientName,
			document.FormatAmount(amount),
			statusLabels[status],
			file,
		)

		if status != invoice.StatusCancelled {
			total = total.Add(amount)
		}
	}

	fmt.Fprintf(&sb, "\nSumme: %s\n", document.FormatAmount(total))

	return sb.String()
}

// WriteZip archives every regular file below dir into w.
func WriteZip(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		zf, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("writing zip: %w", err)
	}

	return zw.Close()
}
