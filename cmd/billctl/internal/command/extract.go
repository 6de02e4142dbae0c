package command

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/voicebill/internal/pipeline"
)

func newExtractCmd(opts *options) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract invoice fields from a dictation",
		Long: `Sends the text to the language model and prints the validated fields.
With --create the fields are turned into a numbered draft invoice.`,
		Example: `  billctl extract "Massage für Max Mustermann, drei Stunden à 80 Euro, 19 Prozent"
  billctl extract --create -a praxis-sonnenschein "Massage für Max Mustermann ..."`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text := strings.Join(args, " ")

			a, err := opts.app(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !create {
				fields, err := a.Pipeline.Preview(ctx, text)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), fields)
			}

			accountID, err := opts.account()
			if err != nil {
				return err
			}

			inv, err := a.Pipeline.CreateFromText(ctx, pipeline.CreateRequest{AccountID: accountID, Text: text})
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), inv)
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "create a draft invoice from the extracted fields")

	return cmd
}
