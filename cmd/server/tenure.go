package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/yukikurage/society-committee-api/internal/dto"
	"github.com/yukikurage/society-committee-api/internal/services"
)

var endTenureFlags = struct {
	confirm string
	next    string
	key     string
}{}

var endTenureCmd = &cobra.Command{
	Use:   "end-tenure",
	Short: "Archive the current committee and start the next one",
	Long: `Archive the current committee and start the next one. Usage:

	server end-tenure --confirm CONFIRM --next 2026-2027
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := commonRun()
		if err != nil {
			return err
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.tenure.EndTenure(cmd.Context(), services.EndTenureInput{
			Confirmation:       endTenureFlags.confirm,
			NewCommitteeNumber: endTenureFlags.next,
			IdempotencyKey:     endTenureFlags.key,
		})
		if err != nil {
			return err
		}

		return printJSON(dto.ToEndTenureResponse(result))
	},
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	endTenureCmd.Flags().StringVar(&endTenureFlags.confirm, "confirm", "", "confirmation token")
	endTenureCmd.Flags().StringVar(&endTenureFlags.next, "next", "", "committee number of the next cycle")
	endTenureCmd.Flags().StringVar(&endTenureFlags.key, "key", "", "idempotency key; reruns with the same key return the first result")
	_ = endTenureCmd.MarkFlagRequired("next")
	rootCmd.AddCommand(endTenureCmd)
}
