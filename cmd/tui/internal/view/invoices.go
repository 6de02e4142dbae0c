package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/pipeline"
)

// sending renders the PDF and talks to the mail server.
const transitionTimeout = 30 * time.Second

type InvoiceLister interface {
	List(ctx context.Context, accountID string, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

type InvoiceActions interface {
	TransitionInvoice(ctx context.Context, accountID string, id uuid.UUID, target invoice.Status) (*invoice.Invoice, error)
	Document(ctx context.Context, accountID string, id uuid.UUID) (*pipeline.Rendered, error)
}

type invoicesState int

const (
	invoicesStateBrowse invoicesState = iota
	invoicesStateTimeframe
	invoicesStateConfirm
)

var statusFilters = []struct {
	label  string
	status invoice.Status
}{
	{label: "All"},
	{label: "Draft", status: invoice.StatusDraft},
	{label: "Sent", status: invoice.StatusSent},
	{label: "Overdue", status: invoice.StatusOverdue},
	{label: "Paid", status: invoice.StatusPaid},
	{label: "Cancelled", status: invoice.StatusCancelled},
}

var actionKeys = map[string]invoice.Status{
	"s": invoice.StatusSent,
	"p": invoice.StatusPaid,
	"o": invoice.StatusOverdue,
	"c": invoice.StatusCancelled,
}

type InvoicesModel struct {
	CommonModel
	invoices  InvoiceLister
	actions   InvoiceActions
	accountID string
	now       func() time.Time

	state     invoicesState
	table     table.Model
	items     []*invoice.Invoice
	picker    TimeframePicker
	form      *huh.Form
	target    invoice.Status
	selected  *invoice.Invoice
	confirmed *bool

	statusFilterIdx int
	rangeLabel      string
	startDate       *time.Time
	endDate         *time.Time

	loading bool
	err     error
	status  string
}

func NewInvoicesModel(invoices InvoiceLister, actions InvoiceActions, accountID string) InvoicesModel {
	columns := []table.Column{
		{Title: "Number", Width: 12},
		{Title: "Date", Width: 12},
		{Title: "Due", Width: 12},
		{Title: "Status", Width: 10},
		{Title: "Total", Width: 14},
		{Title: "Client", Width: 30},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return InvoicesModel{
		invoices:   invoices,
		actions:    actions,
		accountID:  accountID,
		now:        time.Now,
		table:      t,
		picker:     NewTimeframePicker(TimeframeThisMonth),
		rangeLabel: TimeframeAll.String(),
	}
}

func (m InvoicesModel) Title() string { return "Invoices" }

func (m InvoicesModel) ShortHelp() string {
	switch m.state {
	case invoicesStateConfirm:
		return "Confirm the status change | Esc: cancel"
	case invoicesStateTimeframe:
		return "Enter: select | Esc: cancel"
	}

	return "Esc: back | f: status filter | t: timeframe | s: send | p: paid | o: overdue | c: cancel | w: write PDF | r: refresh"
}

func (m InvoicesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.items = msg.items
		m.refreshTable()

		return m, nil

	case invoiceActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + ErrorText(msg.err))
		}

		return m, m.loadCmd()

	case TimeframeSelectedMsg:
		m.state = invoicesStateBrowse
		m.startDate, m.endDate = nil, nil
		m.rangeLabel = TimeframeAll.String()

		if !msg.All {
			start, end := msg.Start, msg.End
			m.startDate, m.endDate = &start, &end
			m.rangeLabel = FormatDate(start) + " to " + FormatDate(end)
		}

		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(msg.Height - 10)

		return m, nil
	}

	switch m.state {
	case invoicesStateBrowse:
		return m.updateBrowse(msg)
	case invoicesStateTimeframe:
		return m.updateTimeframe(msg)
	case invoicesStateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m InvoicesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		key := keyMsg.String()

		switch key {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "f":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			return m, m.loadCmd()
		case "t":
			m.state = invoicesStateTimeframe
			m.picker.Reset()
			m.table.Blur()

			return m, m.picker.Init()
		case "w":
			if inv := m.cursorInvoice(); inv != nil {
				return m, m.writePDFCmd(inv)
			}

			return m, nil
		}

		if target, ok := actionKeys[key]; ok {
			return m.confirmTransition(target)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoicesModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
		m.state = invoicesStateBrowse
		m.table.Focus()

		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m InvoicesModel) confirmTransition(target invoice.Status) (tea.Model, tea.Cmd) {
	inv := m.cursorInvoice()
	if inv == nil {
		return m, nil
	}

	from := inv.EffectiveStatus(m.now())
	if !invoice.CanTransition(from, target) {
		m.status = errorStyle.Render(fmt.Sprintf("%s cannot move from %s to %s", inv.Number, from, target))
		return m, nil
	}

	m.selected = inv
	m.target = target
	m.confirmed = new(bool)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Mark %s as %s?", inv.Number, target)).
				Description(transitionHint(target)).
				Affirmative("Yes").
				Negative("No").
				Value(m.confirmed),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = invoicesStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func transitionHint(target invoice.Status) string {
	switch target {
	case invoice.StatusSent:
		return "The PDF is emailed to the client."
	case invoice.StatusCancelled:
		return "The number stays used and cannot be reissued."
	}

	return ""
}

func (m InvoicesModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.leaveConfirm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	inv, target, confirmed := m.selected, m.target, *m.confirmed
	m = m.leaveConfirm()

	if !confirmed {
		return m, nil
	}

	return m, m.transitionCmd(inv, target)
}

func (m InvoicesModel) leaveConfirm() InvoicesModel {
	m.state = invoicesStateBrowse
	m.selected = nil
	m.table.Focus()

	return m
}

func (m InvoicesModel) cursorInvoice() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return nil
	}

	return m.items[idx]
}

func (m InvoicesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render("Error: " + ErrorText(m.err)))
	}

	if m.state == invoicesStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	}

	header := fmt.Sprintf(
		"Filter: [f] Status: %s | [t] Issued: %s",
		activeStyle(statusFilters[m.statusFilterIdx].label),
		activeStyle(m.rangeLabel),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == invoicesStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(lipgloss.JoinVertical(lipgloss.Left, itemsView(m.selected), "", m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func itemsView(inv *invoice.Invoice) string {
	lines := []string{inv.Number + "  " + inv.ClientName, ""}

	for _, item := range inv.Items {
		lines = append(lines, fmt.Sprintf("%d x %s  %s", item.Quantity, item.Service, FormatAmount(item.LineTotal())))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m InvoicesModel) filter() invoice.ListFilter {
	f := invoice.ListFilter{StartDate: m.startDate, EndDate: m.endDate}

	switch status := statusFilters[m.statusFilterIdx].status; status {
	case "":
	case invoice.StatusOverdue:
		now := m.now()
		f.OverdueAt = &now
	default:
		f.Status = &status
	}

	return f
}

func (m *InvoicesModel) refreshTable() {
	now := m.now()

	rows := make([]table.Row, 0, len(m.items))
	for _, inv := range m.items {
		rows = append(rows, table.Row{
			inv.Number,
			FormatDate(inv.IssueDate),
			FormatDate(inv.DueDate),
			string(inv.EffectiveStatus(now)),
			FormatAmount(inv.Totals.Rounded().Total),
			inv.ClientName,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInvoicesMsg struct {
	items []*invoice.Invoice
	err   error
}

type invoiceActionMsg struct {
	status string
	err    error
}

func (m InvoicesModel) loadCmd() tea.Cmd {
	filter := m.filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		items, err := m.invoices.List(ctx, m.accountID, filter)

		return loadInvoicesMsg{items: items, err: err}
	}
}

func (m InvoicesModel) transitionCmd(inv *invoice.Invoice, target invoice.Status) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), transitionTimeout)
		defer cancel()

		updated, err := m.actions.TransitionInvoice(ctx, m.accountID, inv.ID, target)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{status: fmt.Sprintf("%s is now %s", updated.Number, updated.Status)}
	}
}

func (m InvoicesModel) writePDFCmd(inv *invoice.Invoice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), transitionTimeout)
		defer cancel()

		rendered, err := m.actions.Document(ctx, m.accountID, inv.ID)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		path := filepath.Base(rendered.Filename)
		if err := os.WriteFile(path, rendered.Data, 0o644); err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{status: "Wrote " + path}
	}
}
