// Package scalar validates and normalizes the individual fields of an invoice.
// Every function is pure and returns a *ValidationError on bad input.
package scalar

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// CurrencyEUR is the only currency invoices are issued in.
const CurrencyEUR = "EUR"

// moneyScale is the number of fraction digits a currency amount may carry.
const moneyScale = 2

// ValidationError reports a field that failed its domain constraints.
// Reason is always our own wording, never the rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Text returns the trimmed string value or fails when it is missing or blank.
func Text(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid(field, "must be a string")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(field, "must not be empty")
	}

	return s, nil
}

// Quantity coerces v into a positive integer. Integral decimals such as 3.0 are accepted.
func Quantity(v any) (int64, error) {
	d, err := toDecimal(v)
	if err != nil {
		return 0, invalid("quantity", "must be a number")
	}

	if !d.IsInteger() {
		return 0, invalid("quantity", "must be a whole number")
	}

	if !d.IsPositive() {
		return 0, invalid("quantity", "must be greater than zero")
	}

	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, invalid("quantity", "is too large")
	}

	return d.IntPart(), nil
}

// UnitPrice coerces v into a positive amount with at most two fraction digits.
func UnitPrice(v any) (decimal.Decimal, error) {
	return Money("unit_price", v)
}

// Money coerces v into a positive currency amount.
func Money(field string, v any) (decimal.Decimal, error) {
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, invalid(field, "must be a number")
	}

	if !d.IsPositive() {
		return decimal.Zero, invalid(field, "must be greater than zero")
	}

	if !d.Equal(d.Round(moneyScale)) {
		return decimal.Zero, invalid(field, "must not have more than two decimal places")
	}

	return d, nil
}

// TaxRate coerces v into a fraction between 0 and 1.
// Strings with a percent sign ("19%", "7 %") are divided by 100.
func TaxRate(v any) (decimal.Decimal, error) {
	percent := false

	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if strings.HasSuffix(s, "%") {
			percent = true
			v = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		}
	}

	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, invalid("tax_rate", "must be a number")
	}

	if percent {
		d = d.Div(decimal.NewFromInt(100))
	}

	if d.IsNegative() {
		return decimal.Zero, invalid("tax_rate", "must not be negative")
	}

	if d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, invalid("tax_rate", "must be a fraction between 0 and 1")
	}

	return d, nil
}

// Currency normalizes v to an upper-case ISO code. Only EUR is supported.
func Currency(v any) (string, error) {
	s, err := Text("currency", v)
	if err != nil {
		return "", err
	}

	switch strings.ToUpper(s) {
	case CurrencyEUR, "€", "EURO":
		return CurrencyEUR, nil
	}

	return "", invalid("currency", "only EUR is supported")
}

// Language parses v as a BCP 47 tag and requires German.
func Language(v any) (string, error) {
	s, err := Text("language", v)
	if err != nil {
		return "", err
	}

	tag, err := language.Parse(s)
	if err != nil {
		return "", invalid("language", "must be a language tag")
	}

	base, _ := tag.Base()
	german, _ := language.German.Base()

	if base != german {
		return "", invalid("language", "only German is supported")
	}

	return "de", nil
}

var relativeDays = map[string]int{
	"today":      0,
	"heute":      0,
	"yesterday":  -1,
	"gestern":    -1,
	"vorgestern": -2,
	"tomorrow":   1,
	"morgen":     1,
	"übermorgen": 2,
}

var dateLayouts = []string{
	time.DateOnly,
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
}

// Date resolves v to a calendar date in now's location. Relative words are
// resolved against now, never against any clock of the caller's upstream.
func Date(v any, now time.Time) (time.Time, error) {
	s, err := Text("invoice_date", v)
	if err != nil {
		return time.Time{}, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if offset, ok := relativeDays[strings.ToLower(s)]; ok {
		return today.AddDate(0, 0, offset), nil
	}

	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, now.Location())
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, invalid("invoice_date", "must be a calendar date")
}

// dotGrouped matches amounts that use dots only as thousands separators ("1.000", "12.500.000").
var dotGrouped = regexp.MustCompile(`^-?[1-9]\d{0,2}(\.\d{3})+$`)

// ParseAmount reads an amount written either with a decimal point ("1234.56")
// or in German notation ("1.234,56", "1.000").
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSuffix(strings.ToUpper(s), "EUR")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case dotGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	return decimal.NewFromString(s)
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number")
		}

		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case decimal.Decimal:
		return n, nil
	case string:
		return ParseAmount(n)
	}

	return decimal.Zero, fmt.Errorf("unsupported type %T", v)
}
