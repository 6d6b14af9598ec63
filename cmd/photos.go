package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapmatch/client-engine/internal/core/service"
)

var photosWatch bool

var photosCmd = &cobra.Command{
	Use:   "photos <eventId>",
	Short: "Show (or watch) your matched photos for an event",
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

		if photosWatch {
			fetch := eng.client.MyPhotosFetcher(res.Identity.Token, eventID)
			return eng.watchJob(ctx, eventID, fetch, "/events/"+eventID+"/my-photos")
		}

		snap, err := eng.client.MyPhotos(ctx, res.Identity.Token, eventID)
		if err != nil {
			return fmt.Errorf("my photos: %w", err)
		}
		renderSnapshot(snap)
		return nil
	},
}

func init() {
	photosCmd.Flags().BoolVarP(&photosWatch, "watch", "w", false, "poll until the job reaches a terminal status")
	rootCmd.AddCommand(photosCmd)
}
