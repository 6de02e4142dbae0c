// Package command implements billctl, the operator CLI for voicebill.
package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/voicebill/internal/app"
	"github.com/MrJamesThe3rd/voicebill/internal/config"
	"github.com/MrJamesThe3rd/voicebill/internal/logging"
)

var errNoAccount = errors.New("no account given: pass --account or set TUI_ACCOUNT_ID")

type options struct {
	accountID string
	cfg       *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "billctl",
		Short: "Operate a voicebill installation",
		Long: `billctl runs maintenance tasks against the voicebill database and
services: applying the schema, issuing API tokens, testing extraction and
inspecting invoice number sequences.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			slog.SetDefault(logging.NewWithWriter(cmd.ErrOrStderr(), cfg.App.LogLevel, cfg.App.LogFormat))

			opts.cfg = cfg
			if opts.accountID == "" {
				opts.accountID = cfg.TUI.AccountID
			}

			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.accountID, "account", "a", "", "account to act on")

	root.AddCommand(
		newMigrateCmd(opts),
		newTokenCmd(opts),
		newExtractCmd(opts),
		newSequenceCmd(opts),
		newReconcileCmd(opts),
	)

	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *options) account() (string, error) {
	if o.accountID == "" {
		return "", errNoAccount
	}

	return o.accountID, nil
}

func (o *options) app(ctx context.Context) (*app.App, error) {
	return app.New(ctx, o.cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
