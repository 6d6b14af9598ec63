package ports

import (
	"context"

	"github.com/snapmatch/client-engine/internal/core/domain"
)

// JobStatusFetcher retrieves the current snapshot of one asynchronous match
// job. The concrete endpoint differs between the guest-match and my-photos
// use cases, so the poller receives the operation rather than a client.
type JobStatusFetcher func(ctx context.Context) (domain.JobSnapshot, error)
