package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/json-scraper/internal/options"
	"github.com/JakeFAU/json-scraper/internal/progress"
	"github.com/JakeFAU/json-scraper/internal/scrape"
)

// buildDocuments extracts every field in declared order. It runs once, after
// the fetch barrier, against a snapshot nothing else mutates.
func (r *run) buildDocuments(snapshot scrape.Snapshot, opts options.Options) ([]*Document, error) {
	docs := make([]*Document, 0, len(opts.Outputs))
	for i, out := range opts.Outputs {
		doc := NewDocument(out.Path)
		for _, item := range out.Items {
			body, ok := snapshot.Body(item.URL)
			if !ok {
				return nil, fmt.Errorf("output %q: no response recorded for %q", out.Path, item.URL)
			}
			for _, field := range item.Values {
				value, err := r.extractor.Extract(field.Rule, item.URL, body)
				if err != nil {
					return nil, fmt.Errorf("output %q field %q: %w", out.Path, field.Name, err)
				}
				doc.Set(field.Name, value)
			}
		}
		r.logger.Info("parsed output",
			zap.String("output", out.Path),
			zap.Int("fields", doc.Len()),
			zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(opts.Outputs))),
		)
		r.emit(progress.Event{Stage: progress.StageOutputParsed, Output: out.Path, Fields: doc.Len()})
		docs = append(docs, doc)
	}
	return docs, nil
}
