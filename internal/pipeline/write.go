package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/json-scraper/internal/progress"
	"github.com/JakeFAU/json-scraper/internal/scrape"
)

// writeAll persists every document to every sink concurrently and returns
// when all writes finish or the first one fails.
func (r *run) writeAll(ctx context.Context, docs []*Document) ([]scrape.OutputSummary, error) {
	summaries := make([]scrape.OutputSummary, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	var written atomic.Int64
	for i, doc := range docs {
		g.Go(func() error {
			summary, err := r.writeOne(gctx, doc)
			if err != nil {
				return err
			}
			summaries[i] = summary
			n := written.Add(1)
			if r.cfg.DryRun {
				return nil
			}
			r.logger.Info("wrote output",
				zap.String("output", doc.Path()),
				zap.Strings("uris", summary.URIs),
				zap.String("progress", fmt.Sprintf("%d/%d", n, len(docs))),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *run) writeOne(ctx context.Context, doc *Document) (scrape.OutputSummary, error) {
	data, err := doc.MarshalJSON()
	if err != nil {
		return scrape.OutputSummary{}, &scrape.WriteError{Path: doc.Path(), Err: err}
	}
	digest, err := r.hasher.Hash(data)
	if err != nil {
		return scrape.OutputSummary{}, &scrape.WriteError{Path: doc.Path(), Err: fmt.Errorf("hash document: %w", err)}
	}
	summary := scrape.OutputSummary{
		Path:   doc.Path(),
		Fields: doc.Len(),
		Bytes:  len(data),
		SHA256: digest,
	}
	if r.cfg.DryRun {
		r.logger.Info("dry run output",
			zap.String("output", doc.Path()),
			zap.ByteString("document", data),
		)
		return summary, nil
	}
	ctx, span := tracer.Start(ctx, "pipeline.write", trace.WithAttributes(
		attribute.String("output", doc.Path()),
		attribute.Int("bytes", len(data)),
	))
	defer span.End()
	for _, sink := range r.sinks {
		uri, err := sink.Put(ctx, doc.Path(), data)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "write failed")
			return scrape.OutputSummary{}, &scrape.WriteError{Path: doc.Path(), Err: err}
		}
		summary.URIs = append(summary.URIs, uri)
	}
	r.emit(progress.Event{
		Stage:  progress.StageOutputWritten,
		Output: doc.Path(),
		Fields: doc.Len(),
		Bytes:  int64(len(data)),
	})
	return summary, nil
}
