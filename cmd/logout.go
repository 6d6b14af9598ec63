package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := newEngine(ctx)
		if err != nil {
			return err
		}

		// Server-side invalidation is best effort; the local session is
		// cleared no matter what.
		if id, ok := eng.sessions.Load(ctx); ok {
			if err := eng.client.Logout(ctx, id.Token); err != nil {
				eng.sessions.Clear(ctx)
				fmt.Println("Signed out locally (server unreachable)")
				return nil
			}
		}
		eng.sessions.Clear(ctx)
		fmt.Println("Signed out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
