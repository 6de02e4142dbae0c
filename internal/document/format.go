package document

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const dateLayout = "02.01.2006"

var printer = message.NewPrinter(language.German)

// FormatAmount renders a money amount in German notation, e.g. "1.234,56 €".
func FormatAmount(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2))) + " €"
}

// FormatRate renders a tax fraction as a German percentage, e.g. 0.07 as "7 %".
func FormatRate(rate decimal.Decimal) string {
	pct := rate.Mul(decimal.NewFromInt(100)).Round(2)

	return strings.Replace(pct.String(), ".", ",", 1) + " %"
}

func formatQuantity(q int64) string {
	return printer.Sprint(number.Decimal(q))
}
