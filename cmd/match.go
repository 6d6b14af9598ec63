package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapmatch/client-engine/internal/core/domain"
	"github.com/snapmatch/client-engine/internal/core/service"
)

// Every authenticated role may use the guest match surface; photographers
// and admins use it to preview what guests see.
var matchViewRoles = []domain.Role{
	domain.RoleGuest,
	domain.RolePhotographer,
	domain.RoleAdmin,
	domain.RoleSuperAdmin,
}

var matchSelfieURL string

var matchCmd = &cobra.Command{
	Use:   "match <eventId>",
	Short: "Submit a selfie for matching and watch the job to completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := newEngine(ctx)
		if err != nil {
			return err
		}

		eventID := args[0]
		res := eng.guard.Resolve(ctx, matchViewRoles...)
		if res.Decision != service.DecisionAllowed {
			fmt.Printf("Go to: %s\n", res.Redirect)
			return nil
		}

		queryID, err := eng.client.SubmitMatch(ctx, res.Identity.Token, eventID, matchSelfieURL)
		if err != nil {
			return fmt.Errorf("submit match: %w", err)
		}
		fmt.Printf("Match submitted, query %s\n", queryID)

		fetch := eng.client.MatchFetcher(res.Identity.Token, queryID)
		return eng.watchJob(ctx, queryID, fetch, "/match/"+queryID)
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchSelfieURL, "selfie", "", "URL of the uploaded selfie")
	_ = matchCmd.MarkFlagRequired("selfie")
	rootCmd.AddCommand(matchCmd)
}
