// Package memory records published run summaries for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/json-scraper/internal/scrape"
)

// Publisher stores published summaries for inspection.
type Publisher struct {
	mu        sync.RWMutex
	summaries []scrape.RunSummary
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the summary and returns a pseudo ID.
func (p *Publisher) Publish(_ context.Context, summary scrape.RunSummary) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaries = append(p.summaries, summary)
	return fmt.Sprintf("memory-%d", len(p.summaries)), nil
}

// Summaries returns a copy of the recorded summaries.
func (p *Publisher) Summaries() []scrape.RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]scrape.RunSummary, len(p.summaries))
	copy(out, p.summaries)
	return out
}
