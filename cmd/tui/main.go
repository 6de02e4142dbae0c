package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/voicebill/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/voicebill/internal/app"
	"github.com/MrJamesThe3rd/voicebill/internal/config"
	"github.com/MrJamesThe3rd/voicebill/internal/logging"
)

const logFile = "voicebill-tui.log"

type model struct {
	app       *app.App
	accountID string

	currentView View

	dictateView  view.DictateModel
	invoicesView view.InvoicesModel
	paymentsView view.PaymentsModel
	exportView   view.ExportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewDictate  View = 1
	ViewInvoices View = 2
	ViewPayments View = 3
	ViewExport   View = 4
)

func initialModel(a *app.App, accountID string) model {
	return model{
		app:         a,
		accountID:   accountID,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDictate
				m.dictateView = view.NewDictateModel(m.app.Pipeline, m.accountID)

				return m, m.dictateView.Init()
			case "2":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.app.Invoices, m.app.Pipeline, m.accountID)

				return m, m.invoicesView.Init()
			case "3":
				m.currentView = ViewPayments
				m.paymentsView = view.NewPaymentsModel(m.app.Payments, m.accountID)

				return m, m.paymentsView.Init()
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.app.Export, m.accountID)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDictate:
		var newModel tea.Model
		newModel, cmd = m.dictateView.Update(msg)
		m.dictateView = newModel.(view.DictateModel)
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	case ViewPayments:
		var newModel tea.Model
		newModel, cmd = m.paymentsView.Update(msg)
		m.paymentsView = newModel.(view.PaymentsModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"voicebill\n" +
				lipgloss.NewStyle().Faint(true).Render("account "+m.accountID) + "\n\n" +
				"1. Dictate Invoice\n" +
				"2. Invoices\n" +
				"3. Import Bank Statement\n" +
				"4. Export Invoices\n\n" +
				"q. Quit",
		)
	case ViewDictate:
		current = m.dictateView
	case ViewInvoices:
		current = m.invoicesView
	case ViewPayments:
		current = m.paymentsView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(current.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, current.View(), help)
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.TUI.AccountID == "" {
		return errors.New("TUI_ACCOUNT_ID is not set")
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	logging.NewWithWriter(f, cfg.App.LogLevel, cfg.App.LogFormat)

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a, cfg.TUI.AccountID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("tui failed", "error", err)
		os.Exit(1)
	}
}
