package cmd

import (
	"context"
	"fmt"

	"github.com/snapmatch/client-engine/internal/core/domain"
	"github.com/snapmatch/client-engine/internal/core/ports"
	"github.com/snapmatch/client-engine/internal/core/service"
	"github.com/snapmatch/client-engine/pkg/logger"
)

// watchJob polls one job to its terminal observation, rendering every event.
func (e *engine) watchJob(ctx context.Context, jobID string, fetch ports.JobStatusFetcher, returnTo string) error {
	p := service.NewPoller(jobID, fetch, returnTo, e.pollerOptions(), logger.Component("poller"))
	defer p.Stop()

	for ev := range p.Start(ctx) {
		switch ev.Kind {
		case service.PollUpdate:
			renderSnapshot(ev.Snapshot)
		case service.PollAuthExpired:
			fmt.Printf("Session expired. Go to: %s\n", ev.Redirect)
			return nil
		case service.PollFailed, service.PollUnreachable:
			return ev.Err
		}
	}
	return ctx.Err()
}

func renderSnapshot(snap domain.JobSnapshot) {
	cls := domain.Classify(snap.RawStatus)
	fmt.Printf("[%3d%%] %s", cls.Progress, cls.Label)
	if snap.Message != "" {
		fmt.Printf(" — %s", snap.Message)
	}
	fmt.Println()

	switch {
	case snap.HasResults():
		if snap.Confidence != nil {
			fmt.Printf("Confidence: %.2f\n", *snap.Confidence)
		}
		for _, r := range snap.Results {
			fmt.Printf("  %s  score=%.2f  %s\n", r.PhotoID, r.Score, r.URL)
		}
	case snap.IsNoMatch():
		fmt.Println("No confident match was found for this selfie.")
	}
}
