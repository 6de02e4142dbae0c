package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newReconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [bank-export.csv]",
		Short: "Mark invoices paid from a bank statement export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := opts.account()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening bank export: %w", err)
			}
			defer f.Close()

			a, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Payments.Reconcile(cmd.Context(), accountID, f)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}
