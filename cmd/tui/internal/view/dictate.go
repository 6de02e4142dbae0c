package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/voicebill/internal/extraction"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/pipeline"
)

const dictateTimeout = time.Minute

// Dictation turns free text into invoices.
type Dictation interface {
	Preview(ctx context.Context, text string) (*extraction.Fields, error)
	CreateFromText(ctx context.Context, req pipeline.CreateRequest) (*invoice.Invoice, error)
}

type dictateState int

const (
	dictateStateInput dictateState = iota
	dictateStateExtracting
	dictateStateReview
	dictateStateCreating
	dictateStateResult
)

type DictateModel struct {
	CommonModel
	dictation Dictation
	accountID string

	state   dictateState
	form    *huh.Form
	input   *string
	text    string
	spinner spinner.Model

	fields  *extraction.Fields
	invoice *invoice.Invoice

	// key is reused when creating the same text again after a failure.
	key string
	err error
}

func NewDictateModel(d Dictation, accountID string) DictateModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := DictateModel{
		dictation: d,
		accountID: accountID,
		spinner:   s,
	}
	m.buildForm()

	return m
}

func (m DictateModel) Title() string { return "Dictate Invoice" }

func (m DictateModel) ShortHelp() string {
	switch m.state {
	case dictateStateReview:
		return "Enter: create draft | e: edit text | Esc: back"
	case dictateStateResult:
		return "n: new invoice | Esc: back to menu"
	case dictateStateExtracting, dictateStateCreating:
		return "Working..."
	}

	return "Esc: back | Enter: extract"
}

func (m DictateModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m DictateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewMsg:
		m.state = dictateStateReview
		m.fields = msg.fields
		m.err = msg.err

		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.state = dictateStateReview
			m.err = msg.err

			return m, nil
		}

		m.state = dictateStateResult
		m.invoice = msg.invoice
		m.key = ""

		return m, nil
	}

	switch m.state {
	case dictateStateInput:
		return m.updateInput(msg)
	case dictateStateExtracting, dictateStateCreating:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case dictateStateReview:
		return m.updateReview(msg)
	case dictateStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m DictateModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	text := *m.input
	if text != m.text {
		m.key = ""
	}

	m.text = text
	m.state = dictateStateExtracting
	m.err = nil
	m.fields = nil

	return m, tea.Batch(m.spinner.Tick, m.previewCmd(m.text))
}

func (m DictateModel) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "e":
		return m.restart(m.text)
	case "enter":
		if m.fields == nil {
			return m, nil
		}

		if m.key == "" {
			m.key = uuid.NewString()
		}

		m.state = dictateStateCreating
		m.err = nil

		return m, tea.Batch(m.spinner.Tick, m.createCmd(m.text, m.key))
	}

	return m, nil
}

func (m DictateModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "n":
		return m.restart("")
	}

	return m, nil
}

func (m DictateModel) restart(text string) (tea.Model, tea.Cmd) {
	m.text = text
	m.state = dictateStateInput
	m.invoice = nil
	m.buildForm()

	return m, m.form.Init()
}

func (m *DictateModel) buildForm() {
	m.input = new(string)
	*m.input = m.text

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("text").
				Title("What did you do?").
				Description("e.g. Massage für Herrn Müller, 2 Stunden à 60 Euro").
				CharLimit(2000).
				Value(m.input).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("text cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(70).WithShowHelp(false)
}

func (m DictateModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case dictateStateInput:
		return style.Render(m.form.View())
	case dictateStateExtracting:
		return style.Render(fmt.Sprintf("%s Extracting invoice fields...", m.spinner.View()))
	case dictateStateCreating:
		return style.Render(fmt.Sprintf("%s Allocating number and saving draft...", m.spinner.View()))
	case dictateStateReview:
		return style.Render(m.viewReview())
	case dictateStateResult:
		return style.Render(m.viewResult())
	}

	return ""
}

func (m DictateModel) viewReview() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Text: %s\n\n", lipgloss.NewStyle().Faint(true).Render(m.text))

	if f := m.fields; f != nil {
		fmt.Fprintf(&sb, "Client:     %s\n", f.ClientName)
		fmt.Fprintf(&sb, "Service:    %s\n", f.Service)
		fmt.Fprintf(&sb, "Quantity:   %d\n", f.Quantity)
		fmt.Fprintf(&sb, "Unit price: %s\n", FormatAmount(f.UnitPrice))
		fmt.Fprintf(&sb, "Tax rate:   %s%%\n", f.TaxRate.Shift(2).String())
		fmt.Fprintf(&sb, "Date:       %s\n", FormatDate(f.InvoiceDate))
	}

	if m.err != nil {
		sb.WriteString("\n" + errorStyle.Render("Error: "+ErrorText(m.err)) + "\n")
	}

	return sb.String()
}

func (m DictateModel) viewResult() string {
	inv := m.invoice
	totals := inv.Totals.Rounded()

	header := successStyle.Bold(true).Render(fmt.Sprintf("Draft %s created", inv.Number))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		fmt.Sprintf("Client:   %s", inv.ClientName),
		fmt.Sprintf("Subtotal: %s", FormatAmount(totals.Subtotal)),
		fmt.Sprintf("Tax:      %s", FormatAmount(totals.TaxAmount)),
		fmt.Sprintf("Total:    %s", FormatAmount(totals.Total)),
		fmt.Sprintf("Due:      %s", FormatDate(inv.DueDate)),
	)
}

type previewMsg struct {
	fields *extraction.Fields
	err    error
}

type createdMsg struct {
	invoice *invoice.Invoice
	err     error
}

func (m DictateModel) previewCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dictateTimeout)
		defer cancel()

		fields, err := m.dictation.Preview(ctx, text)

		return previewMsg{fields: fields, err: err}
	}
}

func (m DictateModel) createCmd(text, key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dictateTimeout)
		defer cancel()

		inv, err := m.dictation.CreateFromText(ctx, pipeline.CreateRequest{
			AccountID:      m.accountID,
			Text:           text,
			IdempotencyKey: key,
		})

		return createdMsg{invoice: inv, err: err}
	}
}
