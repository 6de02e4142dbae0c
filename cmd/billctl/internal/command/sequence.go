package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/voicebill/internal/sequence"
)

func newSequenceCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Inspect and configure invoice numbering",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the last issued and the next invoice number",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				accountID, err := opts.account()
				if err != nil {
					return err
				}

				a, err := opts.app(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()

				n, err := a.Allocator.Current(cmd.Context(), accountID)
				if err != nil {
					return err
				}

				next := sequence.Number{Value: n.Value + 1, Prefix: n.Prefix}

				fmt.Fprintf(cmd.OutOrStdout(), "backend: %s\nlast:    %d\nnext:    %s\n",
					opts.cfg.Sequence.Backend, n.Value, next.Display())

				return nil
			},
		},
		&cobra.Command{
			Use:     "prefix [prefix]",
			Short:   "Set the prefix of future invoice numbers",
			Example: `  billctl sequence prefix -a praxis-sonnenschein RE-2025/`,
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				accountID, err := opts.account()
				if err != nil {
					return err
				}

				a, err := opts.app(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()

				if err := a.Allocator.SetPrefix(cmd.Context(), accountID, args[0]); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "prefix set to %q\n", args[0])

				return nil
			},
		},
	)

	return cmd
}
