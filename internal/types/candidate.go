package types

import "time"

// Source identifies which discovery strategy produced a candidate URL.
type Source string

// Discovery source constants. Each maps to one strategy in internal/discovery.
const (
	SourceDirectory Source = "directory"
	SourceWebSearch Source = "web_search"
	SourceKnowledge Source = "knowledge_service"
	SourceHeuristic Source = "heuristic_path"
)

// Candidate is a booking-URL candidate gathered from one discovery source.
// Candidates are disposable: they carry no state beyond their origin and are
// deduplicated by normalized URL.
type Candidate struct {
	URL        string `json:"url"`
	Source     Source `json:"source"`
	Normalized bool   `json:"normalized"`
}

// FetchResult is the transient outcome of probing a candidate URL.
// It is never persisted beyond the run.
type FetchResult struct {
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Body       string    `json:"body,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}
