package bankcsv

type amountMode int

const (
	// amountSigned is one signed column, e.g. "Betrag" with "-10,00".
	amountSigned amountMode = iota
	// amountSplit is a "Soll" and a "Haben" column.
	amountSplit
)

// Profile describes the column layout of one bank's CSV export.
type Profile struct {
	Name       string
	DateCol    string
	RefCol     string
	PartyCol   string // optional
	AmountMode amountMode
	AmountCol  string // amountSigned
	DebitCol   string // amountSplit
	CreditCol  string // amountSplit
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.RefCol}

	switch p.AmountMode {
	case amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles are tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:       "dkb",
		DateCol:    "Buchungsdatum",
		RefCol:     "Verwendungszweck",
		PartyCol:   "Zahlungspflichtige*r",
		AmountMode: amountSigned,
		AmountCol:  "Betrag (€)",
	},
	{
		Name:       "soll-haben",
		DateCol:    "Buchungstag",
		RefCol:     "Verwendungszweck",
		PartyCol:   "Auftraggeber/Empfänger",
		AmountMode: amountSplit,
		DebitCol:   "Soll",
		CreditCol:  "Haben",
	},
	{
		Name:       "sparkasse",
		DateCol:    "Buchungstag",
		RefCol:     "Verwendungszweck",
		PartyCol:   "Beguenstigter/Zahlungspflichtiger",
		AmountMode: amountSigned,
		AmountCol:  "Betrag",
	},
}
