package scrape

import (
	"context"
	"time"
)

// Fetcher retrieves one URL. Implementations return a *FetchError for
// non-2xx responses and transport failures.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Sink persists one serialized output document and returns its URI.
type Sink interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
}

// Publisher pushes run summaries to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, summary RunSummary) (string, error)
}

// Hasher computes digests of written documents.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewRawID() ([16]byte, error)
}
