package invoice_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	type testCase struct {
		name         string
		items        []invoice.LineItem
		wantSubtotal string
		wantTax      string
		wantTotal    string
		wantField    string
	}

	tests := []testCase{
		{
			name: "SingleLine",
			items: []invoice.LineItem{
				{Service: "Massage", Quantity: 3, UnitPrice: d("80.00"), TaxRate: d("0.19")},
			},
			wantSubtotal: "240",
			wantTax:      "45.6",
			wantTotal:    "285.6",
		},
		{
			name: "MixedRatesPerLine",
			items: []invoice.LineItem{
				{Service: "Massage", Quantity: 2, UnitPrice: d("50"), TaxRate: d("0.19")},
				{Service: "Buch", Quantity: 1, UnitPrice: d("20"), TaxRate: d("0.07")},
				{Service: "Beratung", Quantity: 1, UnitPrice: d("10"), TaxRate: d("0")},
			},
			wantSubtotal: "130",
			wantTax:      "20.4",
			wantTotal:    "150.4",
		},
		{
			name: "FractionalTaxKeepsPrecision",
			items: []invoice.LineItem{
				{Service: "Kaffee", Quantity: 1, UnitPrice: d("0.05"), TaxRate: d("0.19")},
			},
			wantSubtotal: "0.05",
			wantTax:      "0.0095",
			wantTotal:    "0.0595",
		},
		{
			name:      "EmptyItems",
			wantField: "items",
		},
		{
			name: "ZeroQuantity",
			items: []invoice.LineItem{
				{Service: "Massage", Quantity: 0, UnitPrice: d("80"), TaxRate: d("0.19")},
			},
			wantField: "quantity",
		},
		{
			name: "NegativeTaxRate",
			items: []invoice.LineItem{
				{Service: "Massage", Quantity: 1, UnitPrice: d("80"), TaxRate: d("-0.19")},
			},
			wantField: "tax_rate",
		},
		{
			name: "ZeroPrice",
			items: []invoice.LineItem{
				{Service: "Massage", Quantity: 1, UnitPrice: decimal.Zero, TaxRate: d("0.19")},
			},
			wantField: "unit_price",
		},
		{
			name: "PriceWithThreeDecimals",
			items: []invoice.LineItem{
				{Service: "Massage", Quantity: 1, UnitPrice: d("0.333"), TaxRate: d("0.19")},
			},
			wantField: "unit_price",
		},
		{
			name: "QuantityAboveInt32",
			items: []invoice.LineItem{
				{Service: "Massage", Quantity: 1 << 40, UnitPrice: d("1"), TaxRate: d("0.19")},
			},
			wantField: "quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := invoice.Compute(tt.items)

			if tt.wantField != "" {
				var verr *scalar.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.wantField, verr.Field)

				return
			}

			require.NoError(t, err)
			assert.True(t, d(tt.wantSubtotal).Equal(got.Subtotal), "subtotal %s", got.Subtotal)
			assert.True(t, d(tt.wantTax).Equal(got.TaxAmount), "tax %s", got.TaxAmount)
			assert.True(t, d(tt.wantTotal).Equal(got.Total), "total %s", got.Total)
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.TaxAmount)))
		})
	}
}

func TestCompute_OrderIndependentAndReproducible(t *testing.T) {
	items := []invoice.LineItem{
		{Service: "A", Quantity: 7, UnitPrice: d("13.37"), TaxRate: d("0.19")},
		{Service: "B", Quantity: 3, UnitPrice: d("0.99"), TaxRate: d("0.07")},
		{Service: "C", Quantity: 1, UnitPrice: d("1234.56"), TaxRate: d("0")},
	}

	first, err := invoice.Compute(items)
	require.NoError(t, err)

	reversed := []invoice.LineItem{items[2], items[1], items[0]}

	second, err := invoice.Compute(reversed)
	require.NoError(t, err)

	again, err := invoice.Compute(items)
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, first.Total.String(), again.Total.String())
}

func TestTotals_Rounded(t *testing.T) {
	totals := invoice.Totals{Subtotal: d("0.05"), TaxAmount: d("0.0095"), Total: d("0.0595")}

	got := totals.Rounded()

	assert.Equal(t, "0.05", got.Subtotal.StringFixed(2))
	assert.Equal(t, "0.01", got.TaxAmount.StringFixed(2))
	assert.Equal(t, "0.06", got.Total.StringFixed(2))
}

func TestCompute_SubCentTaxRoundsOnlyForPresentation(t *testing.T) {
	got, err := invoice.Compute([]invoice.LineItem{
		{Service: "Kaugummi", Quantity: 1, UnitPrice: d("0.99"), TaxRate: d("0.005")},
	})
	require.NoError(t, err)

	assert.Equal(t, "0.00495", got.TaxAmount.String())
	assert.Equal(t, "0.99495", got.Total.String())

	rounded := got.Rounded()
	assert.Equal(t, "0.00", rounded.TaxAmount.StringFixed(2))
	assert.Equal(t, "0.99", rounded.Total.StringFixed(2))
}
