package domain

// MatchResult is one photo matched against the submitted selfie.
type MatchResult struct {
	PhotoID      string  `json:"photo_id"`
	Score        float64 `json:"score"`
	URL          string  `json:"url"`
	ThumbnailURL string  `json:"thumbnail_url"`
}

// JobSnapshot is one observation of an asynchronous match job. The backend
// owns all status transitions; the client only ever reads snapshots.
type JobSnapshot struct {
	JobID      string
	RawStatus  string
	Status     JobStatus
	Message    string
	Confidence *float64 // in [0,1] when the backend reports one
	Results    []MatchResult
}

// HasResults reports whether the job finished with at least one match.
// Results are only meaningful on a completed job; for every other status
// they must be ignored even if present.
func (j JobSnapshot) HasResults() bool {
	return j.Status == StatusCompleted && len(j.Results) > 0
}

// IsNoMatch reports whether the job finished without a confident match.
// This is a distinct user-facing outcome from "still running" and is
// mutually exclusive with HasResults.
func (j JobSnapshot) IsNoMatch() bool {
	return j.Status == StatusCompleted && len(j.Results) == 0
}
