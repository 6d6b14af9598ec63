package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/snapmatch/client-engine/internal/core/domain"
	"github.com/snapmatch/client-engine/internal/core/ports"
)

type photoResult struct {
	ID           string  `json:"id"`
	Score        float64 `json:"score"`
	URL          string  `json:"url"`
	ThumbnailURL string  `json:"thumbnail_url"`
}

type matchStatusResponse struct {
	Status     string        `json:"status"`
	Message    string        `json:"message"`
	Confidence *float64      `json:"confidence,omitempty"`
	QueryID    string        `json:"query_id,omitempty"`
	Photos     []photoResult `json:"photos"`
}

type submitMatchRequest struct {
	SelfieURL string `json:"selfie_url"`
}

type submitMatchResponse struct {
	QueryID string `json:"query_id"`
	Status  string `json:"status"`
}

func (r matchStatusResponse) snapshot(jobID string) domain.JobSnapshot {
	snap := domain.JobSnapshot{
		JobID:      jobID,
		RawStatus:  r.Status,
		Status:     domain.Classify(r.Status).Status,
		Message:    r.Message,
		Confidence: r.Confidence,
	}
	for _, p := range r.Photos {
		snap.Results = append(snap.Results, domain.MatchResult{
			PhotoID:      p.ID,
			Score:        p.Score,
			URL:          p.URL,
			ThumbnailURL: p.ThumbnailURL,
		})
	}
	return snap
}

// SubmitMatch submits a selfie for matching against an event's photos and
// returns the query id that keys the subsequent polling.
func (c *Client) SubmitMatch(ctx context.Context, token, eventID, selfieURL string) (string, error) {
	var res submitMatchResponse
	path := "/guest/events/" + url.PathEscape(eventID) + "/match"
	if err := c.do(ctx, http.MethodPost, path, token, submitMatchRequest{SelfieURL: selfieURL}, &res); err != nil {
		return "", err
	}
	return res.QueryID, nil
}

// MatchStatus returns the current snapshot of a guest match job.
func (c *Client) MatchStatus(ctx context.Context, token, queryID string) (domain.JobSnapshot, error) {
	var res matchStatusResponse
	path := "/guest/matches/" + url.PathEscape(queryID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &res); err != nil {
		return domain.JobSnapshot{}, err
	}
	return res.snapshot(queryID), nil
}

// MyPhotos returns the snapshot of the standing "my photos" job for an
// event. The backend reports the underlying query id alongside the photos.
func (c *Client) MyPhotos(ctx context.Context, token, eventID string) (domain.JobSnapshot, error) {
	var res matchStatusResponse
	path := "/guest/events/" + url.PathEscape(eventID) + "/my-photos"
	if err := c.do(ctx, http.MethodGet, path, token, nil, &res); err != nil {
		return domain.JobSnapshot{}, err
	}
	return res.snapshot(res.QueryID), nil
}

// MatchFetcher adapts MatchStatus to the poller's injected fetch operation.
func (c *Client) MatchFetcher(token, queryID string) ports.JobStatusFetcher {
	return func(ctx context.Context) (domain.JobSnapshot, error) {
		return c.MatchStatus(ctx, token, queryID)
	}
}

// MyPhotosFetcher adapts MyPhotos to the poller's injected fetch operation.
func (c *Client) MyPhotosFetcher(token, eventID string) ports.JobStatusFetcher {
	return func(ctx context.Context) (domain.JobSnapshot, error) {
		return c.MyPhotos(ctx, token, eventID)
	}
}
