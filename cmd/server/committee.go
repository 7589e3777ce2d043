package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/yukikurage/society-committee-api/internal/dto"
	"github.com/yukikurage/society-committee-api/internal/utils"
)

var committeeCmd = &cobra.Command{
	Use:   "committee",
	Short: "Inspect current and previous committees",
}

var committeeCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the current committee",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp()
		if err != nil {
			return err
		}
		defer a.close()

		committee, err := a.committee.GetCurrentCommittee(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(dto.ToCurrentCommitteeDTO(committee))
	},
}

var previousFlags = struct {
	page  int
	limit int
}{}

var committeePreviousCmd = &cobra.Command{
	Use:   "previous [committee-number]",
	Short: "List previous committees, or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp()
		if err != nil {
			return err
		}
		defer a.close()

		if len(args) == 1 {
			number := strings.TrimSpace(args[0])
			members, err := a.archive.GetPreviousCommittee(cmd.Context(), number)
			if err != nil {
				return err
			}
			return printJSON(dto.ToPreviousCommitteeDTO(number, members))
		}

		params := utils.NewPaginationParams(previousFlags.page, previousFlags.limit)
		summaries, total, err := a.archive.ListPreviousCommittees(cmd.Context(), params)
		if err != nil {
			return err
		}
		return printJSON(dto.ToPreviousCommitteeListResponse(summaries, params.Page, params.Limit, total))
	},
}

var transitionsLimit int

var committeeTransitionsCmd = &cobra.Command{
	Use:   "transitions",
	Short: "Print recent tenure transitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp()
		if err != nil {
			return err
		}
		defer a.close()

		transitions, err := a.tenure.Transitions(cmd.Context(), transitionsLimit)
		if err != nil {
			return err
		}
		return printJSON(dto.ToTransitionDTOs(transitions))
	},
}

func setupApp() (*app, error) {
	cfg, logger, err := commonRun()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger)
}

func init() {
	committeePreviousCmd.Flags().IntVar(&previousFlags.page, "page", 1, "page number")
	committeePreviousCmd.Flags().IntVar(&previousFlags.limit, "limit", 20, "committees per page")
	committeeTransitionsCmd.Flags().IntVar(&transitionsLimit, "limit", 20, "number of transitions")

	committeeCmd.AddCommand(committeeCurrentCmd, committeePreviousCmd, committeeTransitionsCmd)
	rootCmd.AddCommand(committeeCmd)
}
