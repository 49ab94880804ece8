package scrape

import (
	"net/http"
	"time"
)

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Success reports whether the status code is in the 2xx range.
func (r FetchResponse) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Snapshot holds the fetched body of every distinct URL. It is built once the
// fetch barrier releases and is read-only afterwards.
type Snapshot struct {
	bodies map[string]string
}

// NewSnapshot copies bodies into an immutable Snapshot.
func NewSnapshot(bodies map[string]string) Snapshot {
	copied := make(map[string]string, len(bodies))
	for k, v := range bodies {
		copied[k] = v
	}
	return Snapshot{bodies: copied}
}

// Body returns the fetched body for url.
func (s Snapshot) Body(url string) (string, bool) {
	body, ok := s.bodies[url]
	return body, ok
}

// Len returns the number of URLs in the snapshot.
func (s Snapshot) Len() int {
	return len(s.bodies)
}

// RunSummary is published once a run has written every output.
type RunSummary struct {
	RunID        string          `json:"run_id"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	DistinctURLs int             `json:"distinct_urls"`
	Outputs      []OutputSummary `json:"outputs"`
	DryRun       bool            `json:"dry_run,omitempty"`
}

// OutputSummary describes one written document.
type OutputSummary struct {
	Path   string   `json:"path"`
	Fields int      `json:"fields"`
	Bytes  int      `json:"bytes"`
	SHA256 string   `json:"sha256"`
	URIs   []string `json:"uris,omitempty"`
}
