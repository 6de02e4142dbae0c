package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/voicebill/internal/auth"
)

func newTokenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "token",
		Short:   "Issue an API bearer token for an account",
		Example: `  billctl token --account praxis-sonnenschein`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accountID, err := opts.account()
			if err != nil {
				return err
			}

			issuer, err := auth.NewIssuer(opts.cfg.Auth.Secret, opts.cfg.Auth.Issuer, opts.cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}

			token, err := issuer.Issue(accountID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}
}
