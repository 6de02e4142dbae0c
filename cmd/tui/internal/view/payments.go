package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/voicebill/internal/payments"
	"github.com/MrJamesThe3rd/voicebill/internal/payments/bankcsv"
)

const importTimeout = 2 * time.Minute

// Reconciler marks invoices as paid from a bank statement export.
type Reconciler interface {
	Reconcile(ctx context.Context, accountID string, r io.Reader) (*payments.Report, error)
}

type paymentsState int

const (
	paymentsStateFilePick paymentsState = iota
	paymentsStateImporting
	paymentsStateResult
)

type PaymentsModel struct {
	CommonModel
	reconciler Reconciler
	accountID  string

	state      paymentsState
	filePicker filepicker.Model
	report     list.Model

	status string
	err    error
}

func NewPaymentsModel(r Reconciler, accountID string) PaymentsModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".CSV"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return PaymentsModel{
		reconciler: r,
		accountID:  accountID,
		filePicker: fp,
	}
}

func (m PaymentsModel) Title() string { return "Import Bank Statement" }

func (m PaymentsModel) ShortHelp() string {
	if m.state == paymentsStateResult {
		return "Up/Down: scroll | Esc: import another file"
	}

	return "Esc: back | Enter: select"
}

func (m PaymentsModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m PaymentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == paymentsStateResult {
			var cmd tea.Cmd
			m.report, cmd = m.report.Update(msg)

			return m, cmd
		}

	case reconcileResultMsg:
		m.state = paymentsStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = "Error: " + ErrorText(msg.err)

			return m, nil
		}

		r := msg.report
		m.status = fmt.Sprintf("%d paid, %d unmatched, %d failed", len(r.Matched), len(r.Unmatched), len(r.Failed))
		m.report = newReportList(r)

		return m, nil
	}

	if m.state != paymentsStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = paymentsStateImporting
		m.status = fmt.Sprintf("Reconciling %s...", path)

		return m, m.reconcileCmd(path)
	}

	return m, cmd
}

func (m PaymentsModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == paymentsStateResult {
		m.state = paymentsStateFilePick
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m PaymentsModel) View() string {
	switch m.state {
	case paymentsStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a CSV bank statement:\n\n%s", m.filePicker.View()),
		)
	case paymentsStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case paymentsStateResult:
		return m.viewResult()
	}

	return ""
}

func (m PaymentsModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(1)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		successStyle.Render(m.status),
		"",
		m.report.View(),
	))
}

type reconcileResultMsg struct {
	report *payments.Report
	err    error
}

func (m PaymentsModel) reconcileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return reconcileResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		report, err := m.reconciler.Reconcile(ctx, m.accountID, f)

		return reconcileResultMsg{report: report, err: err}
	}
}

// Report list

type reportKind int

const (
	reportPaid reportKind = iota
	reportUnmatched
	reportFailed
)

type reportItem struct {
	kind   reportKind
	tx     bankcsv.Transaction
	number string
	reason string
}

func (i reportItem) Title() string       { return i.number }
func (i reportItem) Description() string { return i.tx.Reference }
func (i reportItem) FilterValue() string { return i.tx.Reference }

func newReportList(r *payments.Report) list.Model {
	items := make([]list.Item, 0, len(r.Matched)+len(r.Unmatched)+len(r.Failed))

	for _, match := range r.Matched {
		items = append(items, reportItem{kind: reportPaid, tx: match.Transaction, number: match.Number})
	}

	for _, f := range r.Failed {
		items = append(items, reportItem{kind: reportFailed, tx: f.Transaction, number: f.Number, reason: f.Reason})
	}

	for _, tx := range r.Unmatched {
		items = append(items, reportItem{kind: reportUnmatched, tx: tx})
	}

	l := list.New(items, reportDelegate{}, 90, 20)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

type reportDelegate struct{}

func (d reportDelegate) Height() int                             { return 2 }
func (d reportDelegate) Spacing() int                            { return 0 }
func (d reportDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d reportDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(reportItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	var label string

	switch item.kind {
	case reportPaid:
		label = successStyle.Render("paid      " + item.number)
	case reportFailed:
		label = errorStyle.Render("failed    " + item.number + ": " + item.reason)
	default:
		label = lipgloss.NewStyle().Faint(true).Render("unmatched")
	}

	line2 := fmt.Sprintf("    %s  %s  %s  %s",
		FormatDate(item.tx.Date),
		FormatAmount(item.tx.Amount),
		item.tx.Counterparty,
		item.tx.Reference,
	)

	fmt.Fprintf(w, "%s%s\n%s", cursor, label, line2)
}
