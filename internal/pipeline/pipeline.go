// Package pipeline runs one scrape: fetch every distinct URL concurrently,
// extract each output document in declared order once all fetches succeed,
// then write every document concurrently. The first failure anywhere cancels
// the rest of the run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/json-scraper/internal/clock/system"
	"github.com/JakeFAU/json-scraper/internal/extract"
	"github.com/JakeFAU/json-scraper/internal/hash/sha256"
	iduuid "github.com/JakeFAU/json-scraper/internal/id/uuid"
	"github.com/JakeFAU/json-scraper/internal/options"
	"github.com/JakeFAU/json-scraper/internal/progress"
	"github.com/JakeFAU/json-scraper/internal/scrape"
)

var tracer = otel.Tracer("github.com/JakeFAU/json-scraper/internal/pipeline")

// Config controls Pipeline behavior.
type Config struct {
	// DryRun fetches and extracts but writes nothing; documents are logged.
	DryRun bool
}

// Pipeline executes runs. It holds no per-run state and may run repeatedly.
type Pipeline struct {
	fetcher   scrape.Fetcher
	extractor *extract.Extractor
	sinks     []scrape.Sink
	emitter   progress.Emitter
	hasher    scrape.Hasher
	clock     scrape.Clock
	ids       scrape.IDGenerator
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Pipeline. Nil collaborators other than fetcher fall back
// to lenient extraction, a no-op emitter, SHA-256, the system clock, and
// UUIDv7 run IDs.
func New(
	fetcher scrape.Fetcher,
	extractor *extract.Extractor,
	sinks []scrape.Sink,
	emitter progress.Emitter,
	hasher scrape.Hasher,
	clock scrape.Clock,
	ids scrape.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) (*Pipeline, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if len(sinks) == 0 && !cfg.DryRun {
		return nil, fmt.Errorf("at least one sink is required")
	}
	if extractor == nil {
		extractor = extract.New(extract.Config{})
	}
	if emitter == nil {
		emitter = progress.NopEmitter{}
	}
	if hasher == nil {
		hasher = sha256.New()
	}
	if clock == nil {
		clock = system.New()
	}
	if ids == nil {
		ids = iduuid.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		sinks:     append([]scrape.Sink(nil), sinks...),
		emitter:   emitter,
		hasher:    hasher,
		clock:     clock,
		ids:       ids,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Run validates opts and executes one run. The returned summary is populated
// as far as the run got; on error its Outputs are empty unless every write
// succeeded.
func (p *Pipeline) Run(ctx context.Context, opts options.Options) (scrape.RunSummary, error) {
	if err := opts.Validate(); err != nil {
		return scrape.RunSummary{}, err
	}
	rawID, err := p.ids.NewRawID()
	if err != nil {
		return scrape.RunSummary{}, fmt.Errorf("generate run id: %w", err)
	}
	runID := uuid.UUID(rawID).String()
	ctx, span := tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Bool("dry_run", p.cfg.DryRun),
	))
	defer span.End()

	r := &run{
		Pipeline: p,
		id:       rawID,
		logger:   p.logger.With(zap.String("run_id", runID)),
	}
	summary := scrape.RunSummary{
		RunID:     runID,
		StartedAt: p.clock.Now(),
		DryRun:    p.cfg.DryRun,
	}
	r.emit(progress.Event{Stage: progress.StageRunStart})

	outputs, distinct, err := r.execute(ctx, opts)
	summary.DistinctURLs = distinct
	summary.FinishedAt = p.clock.Now()
	elapsed := nonNegative(summary.FinishedAt.Sub(summary.StartedAt))
	span.SetAttributes(attribute.Int("distinct_urls", distinct))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		r.emit(progress.Event{Stage: progress.StageRunError, Dur: elapsed, Note: err.Error()})
		return summary, err
	}
	summary.Outputs = outputs
	r.emit(progress.Event{Stage: progress.StageRunDone, Dur: elapsed})
	r.logger.Info("all operations completed",
		zap.Int("outputs", len(outputs)),
		zap.Int("distinct_urls", distinct),
		zap.Duration("elapsed", elapsed),
		zap.Bool("dry_run", p.cfg.DryRun),
	)
	return summary, nil
}

// run carries the identity of one execution through its phases.
type run struct {
	*Pipeline
	id     [16]byte
	logger *zap.Logger
}

func (r *run) execute(ctx context.Context, opts options.Options) ([]scrape.OutputSummary, int, error) {
	urls := opts.DistinctURLs()
	snapshot, err := r.fetchAll(ctx, urls)
	if err != nil {
		return nil, len(urls), err
	}
	docs, err := r.buildDocuments(snapshot, opts)
	if err != nil {
		return nil, len(urls), err
	}
	outputs, err := r.writeAll(ctx, docs)
	if err != nil {
		return nil, len(urls), err
	}
	return outputs, len(urls), nil
}

func (r *run) emit(evt progress.Event) {
	evt.RunID = r.id
	evt.TS = r.clock.Now()
	r.emitter.Emit(evt)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
