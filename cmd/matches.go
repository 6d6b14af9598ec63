package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapmatch/client-engine/internal/core/service"
)

var matchesWatch bool

var matchesCmd = &cobra.Command{
	Use:   "matches <queryId>",
	Short: "Show (or watch) the status of a match query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := newEngine(ctx)
		if err != nil {
			return err
		}

		queryID := args[0]
		res := eng.guard.Resolve(ctx, matchViewRoles...)
		if res.Decision != service.DecisionAllowed {
			fmt.Printf("Go to: %s\n", res.Redirect)
			return nil
		}

		if matchesWatch {
			fetch := eng.client.MatchFetcher(res.Identity.Token, queryID)
			return eng.watchJob(ctx, queryID, fetch, "/match/"+queryID)
		}

		snap, err := eng.client.MatchStatus(ctx, res.Identity.Token, queryID)
		if err != nil {
			return fmt.Errorf("match status: %w", err)
		}
		renderSnapshot(snap)
		return nil
	},
}

func init() {
	matchesCmd.Flags().BoolVarP(&matchesWatch, "watch", "w", false, "poll until the job reaches a terminal status")
	rootCmd.AddCommand(matchesCmd)
}
