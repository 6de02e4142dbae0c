package bankcsv_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/voicebill/internal/payments/bankcsv"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_Sparkasse(t *testing.T) {
	csv := `"Auftragskonto";"Buchungstag";"Valutadatum";"Buchungstext";"Verwendungszweck";"Beguenstigter/Zahlungspflichtiger";"Kontonummer/IBAN";"Betrag";"Waehrung"
"DE02120300000000202051";"16.05.25";"16.05.25";"GUTSCHR. UEBERWEISUNG";"Rechnung 0004 Massage";"Max Mustermann";"DE12500105170648489890";"285,60";"EUR"
"DE02120300000000202051";"15.05.25";"15.05.25";"KARTENZAHLUNG";"Praxisbedarf";"Drogerie";"";"-42,10";"EUR"
"DE02120300000000202051";"";"";"Umsatz vorgemerkt";"offen";"";"";"10,00";"EUR"
`

	txs, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2025, 5, 16), txs[0].Date)
	assert.Equal(t, "Rechnung 0004 Massage", txs[0].Reference)
	assert.Equal(t, "Max Mustermann", txs[0].Counterparty)
	assert.True(t, decimal.RequireFromString("285.60").Equal(txs[0].Amount))
	assert.True(t, txs[0].Credit)

	assert.True(t, decimal.RequireFromString("42.10").Equal(txs[1].Amount))
	assert.False(t, txs[1].Credit)
}

func TestParser_DKB(t *testing.T) {
	csv := `"Girokonto";"DE07123412341234123412"
""
"Kontostand vom 31.05.2025:";"5.284,60 €"
""
"Buchungsdatum";"Wertstellung";"Status";"Zahlungspflichtige*r";"Zahlungsempfänger*in";"Verwendungszweck";"Umsatztyp";"IBAN";"Betrag (€)"
"20.05.25";"20.05.25";"Gebucht";"Erika Musterfrau";"Praxis Sonne";"RE-0012 Physiotherapie";"Eingang";"DE12500105170648489890";"1.071,00"
`

	txs, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, date(2025, 5, 20), txs[0].Date)
	assert.Equal(t, "Erika Musterfrau", txs[0].Counterparty)
	assert.Equal(t, "RE-0012 Physiotherapie", txs[0].Reference)
	assert.True(t, decimal.RequireFromString("1071").Equal(txs[0].Amount))
	assert.True(t, txs[0].Credit)
}

func TestParser_SollHabenWindows1252(t *testing.T) {
	csv := "Buchungstag;Wert;Auftraggeber/Empfänger;Verwendungszweck;Soll;Haben\n" +
		"02.06.2025;02.06.2025;Jürgen Weiß;Überweisung Rechnung 0007;;119,00\n" +
		"03.06.2025;03.06.2025;Stadtwerke;Strom Juni;-80,00;\n" +
		";;;Endsaldo;;1.039,00\n"

	encoded, err := charmap.Windows1252.NewEncoder().String(csv)
	require.NoError(t, err)

	txs, err := bankcsv.NewParser().Parse(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "Jürgen Weiß", txs[0].Counterparty)
	assert.Equal(t, "Überweisung Rechnung 0007", txs[0].Reference)
	assert.True(t, decimal.NewFromInt(119).Equal(txs[0].Amount))
	assert.True(t, txs[0].Credit)

	assert.True(t, decimal.NewFromInt(80).Equal(txs[1].Amount))
	assert.False(t, txs[1].Credit)
}

func TestParser_Errors(t *testing.T) {
	type args struct {
		csv string
	}

	type testCase struct {
		name    string
		args    args
		wantErr error
		wantLen int
	}

	tests := []testCase{
		{
			name:    "UnknownLayout",
			args:    args{csv: "Data mov.;Descrição;Montante\n30-01-2026;X;-1,00\n"},
			wantErr: bankcsv.ErrUnknownFormat,
		},
		{
			name:    "Empty",
			args:    args{csv: ""},
			wantErr: bankcsv.ErrUnknownFormat,
		},
		{
			name:    "HeaderOnly",
			args:    args{csv: "Buchungstag;Verwendungszweck;Betrag\n"},
			wantLen: 0,
		},
		{
			name:    "UnparseableAmountSkipped",
			args:    args{csv: "Buchungstag;Verwendungszweck;Betrag\n01.06.2025;X;abc\n01.06.2025;Y;0,00\n"},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := bankcsv.NewParser().Parse(strings.NewReader(tt.args.csv))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, txs, tt.wantLen)
		})
	}
}
