package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

// Totals holds the monetary sums derived from an invoice's line items at full precision.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Rounded returns the totals rounded half away from zero to cents.
// The rounded total is the sum of the rounded parts so printed figures always add up.
func (t Totals) Rounded() Totals {
	sub := t.Subtotal.Round(2)
	tax := t.TaxAmount.Round(2)

	return Totals{Subtotal: sub, TaxAmount: tax, Total: sub.Add(tax)}
}

// LineTotal is the net amount of a single item.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
}

// Validate checks the item's own constraints. Quantity, unit price and tax rate
// are held to the same scalar rules as extracted values.
func (li LineItem) Validate() error {
	if strings.TrimSpace(li.Service) == "" {
		return &scalar.ValidationError{Field: "service", Reason: "must not be empty"}
	}

	if _, err := scalar.Quantity(li.Quantity); err != nil {
		return err
	}

	if _, err := scalar.UnitPrice(li.UnitPrice); err != nil {
		return err
	}

	if _, err := scalar.TaxRate(li.TaxRate); err != nil {
		return err
	}

	return nil
}

// Compute derives subtotal, tax and total from items. Tax is computed per line.
func Compute(items []LineItem) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, &scalar.ValidationError{Field: "items", Reason: "at least one line item is required"}
	}

	subtotal := decimal.Zero
	tax := decimal.Zero

	for i, li := range items {
		if err := li.Validate(); err != nil {
			return Totals{}, fmt.Errorf("item %d: %w", i+1, err)
		}

		net := li.LineTotal()
		subtotal = subtotal.Add(net)
		tax = tax.Add(net.Mul(li.TaxRate))
	}

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}, nil
}
