// Package bankcsv reads CSV account statements exported by German banks.
package bankcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/voicebill/internal/encoding"
)

// ErrUnknownFormat is returned when no header row matches a known bank layout.
var ErrUnknownFormat = errors.New("no matching bank export format")

var dateLayouts = []string{"02.01.2006", "02.01.06", "2006-01-02"}

// Transaction is one booked statement line. Amount is always positive.
type Transaction struct {
	Date         time.Time       `json:"date"`
	Counterparty string          `json:"counterparty"`
	Reference    string          `json:"reference"`
	Amount       decimal.Decimal `json:"amount"`
	Credit       bool            `json:"credit"`
}

// Parser auto-detects the export layout by matching the header row against
// the known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]Transaction, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrUnknownFormat
	}

	return parseRows(profile, cols, rows[headerIdx+1:]), nil
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a date or a non-zero amount, such as
// pending bookings and balance footers.
func parseRows(p *Profile, cols colIndex, rows [][]string) []Transaction {
	partyIdx := -1
	if idx, ok := cols[p.PartyCol]; ok {
		partyIdx = idx
	}

	var txs []Transaction

	for _, row := range rows {
		date, ok := parseDate(cellValue(row, cols[p.DateCol]))
		if !ok {
			continue
		}

		amount, credit, ok := parseAmount(p, cols, row)
		if !ok {
			continue
		}

		txs = append(txs, Transaction{
			Date:         date,
			Counterparty: cellValue(row, partyIdx),
			Reference:    cellValue(row, cols[p.RefCol]),
			Amount:       amount,
			Credit:       credit,
		})
	}

	return txs
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, bool, bool) {
	switch p.AmountMode {
	case amountSigned:
		d, ok := amountCell(row, cols[p.AmountCol])
		if !ok {
			return decimal.Zero, false, false
		}

		return d.Abs(), d.IsPositive(), true
	case amountSplit:
		if d, ok := amountCell(row, cols[p.DebitCol]); ok {
			return d.Abs(), false, true
		}

		if d, ok := amountCell(row, cols[p.CreditCol]); ok {
			return d.Abs(), true, true
		}
	}

	return decimal.Zero, false, false
}

// amountCell parses a non-zero amount from the cell at idx.
func amountCell(row []string, idx int) (decimal.Decimal, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseGermanAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
