package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/json-scraper/internal/metrics"
	"github.com/JakeFAU/json-scraper/internal/progress"
	"github.com/JakeFAU/json-scraper/internal/scrape"
)

// fetchAll requests every URL at once and returns when all bodies are in or
// the first one fails. A failure cancels the requests still in flight.
func (r *run) fetchAll(ctx context.Context, urls []string) (scrape.Snapshot, error) {
	g, gctx := errgroup.WithContext(ctx)
	var (
		mu       sync.Mutex
		bodies   = make(map[string]string, len(urls))
		resolved atomic.Int64
		total    = len(urls)
	)
	for _, url := range urls {
		g.Go(func() error {
			body, err := r.fetchOne(gctx, url, &resolved, total)
			if err != nil {
				return err
			}
			mu.Lock()
			bodies[url] = body
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return scrape.Snapshot{}, err
	}
	return scrape.NewSnapshot(bodies), nil
}

func (r *run) fetchOne(ctx context.Context, url string, resolved *atomic.Int64, total int) (string, error) {
	site := metrics.SanitizeSite(url)
	ctx, span := tracer.Start(ctx, "pipeline.fetch", trace.WithAttributes(attribute.String("url", url)))
	defer span.End()

	r.logger.Info("requesting url", zap.String("url", url))
	r.emit(progress.Event{Stage: progress.StageFetchStart, URL: url, Site: site})

	resp, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		fetchErr := asFetchError(url, err)
		span.RecordError(fetchErr)
		span.SetStatus(codes.Error, "fetch failed")
		r.emit(progress.Event{
			Stage:       progress.StageFetchDone,
			URL:         url,
			Site:        site,
			StatusClass: progress.ClassifyStatus(fetchErr.StatusCode),
			Bytes:       int64(len(fetchErr.Body)),
			Note:        fetchErr.Error(),
		})
		return "", fetchErr
	}

	span.SetAttributes(attribute.Int("status_code", resp.StatusCode), attribute.Int("bytes", len(resp.Body)))
	n := resolved.Add(1)
	r.logger.Info("response received",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.String("progress", fmt.Sprintf("%d/%d", n, total)),
		zap.Duration("dur", resp.Duration),
	)
	r.emit(progress.Event{
		Stage:       progress.StageFetchDone,
		URL:         url,
		Site:        site,
		StatusClass: progress.ClassifyStatus(resp.StatusCode),
		Bytes:       int64(len(resp.Body)),
		Dur:         nonNegative(resp.Duration),
	})
	return string(resp.Body), nil
}

func asFetchError(url string, err error) *scrape.FetchError {
	var fetchErr *scrape.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}
	return &scrape.FetchError{URL: url, Err: err}
}
