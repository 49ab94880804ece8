// Package app wires configuration into the collaborators of one scrape run and
// owns their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/JakeFAU/json-scraper/internal/clock/system"
	"github.com/JakeFAU/json-scraper/internal/config"
	"github.com/JakeFAU/json-scraper/internal/extract"
	collyfetcher "github.com/JakeFAU/json-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/json-scraper/internal/hash/sha256"
	"github.com/JakeFAU/json-scraper/internal/id/uuid"
	"github.com/JakeFAU/json-scraper/internal/metrics"
	"github.com/JakeFAU/json-scraper/internal/options"
	"github.com/JakeFAU/json-scraper/internal/pipeline"
	"github.com/JakeFAU/json-scraper/internal/progress"
	progresssinks "github.com/JakeFAU/json-scraper/internal/progress/sinks"
	memorypublisher "github.com/JakeFAU/json-scraper/internal/publisher/memory"
	gcppublisher "github.com/JakeFAU/json-scraper/internal/publisher/pubsub"
	"github.com/JakeFAU/json-scraper/internal/scrape"
	gcssink "github.com/JakeFAU/json-scraper/internal/storage/gcs"
	"github.com/JakeFAU/json-scraper/internal/storage/local"
	"github.com/JakeFAU/json-scraper/internal/telemetry"
)

// Option adjusts how New builds the App.
type Option func(*settings)

type settings struct {
	dryRun      bool
	fetcher     scrape.Fetcher
	storageOpts []option.ClientOption
	pubsubOpts  []option.ClientOption
	traceOpts   []sdktrace.TracerProviderOption
}

// WithDryRun skips every sink; documents are only logged.
func WithDryRun(dryRun bool) Option {
	return func(s *settings) { s.dryRun = dryRun }
}

// WithFetcher replaces the colly fetcher.
func WithFetcher(f scrape.Fetcher) Option {
	return func(s *settings) { s.fetcher = f }
}

// WithStorageClientOptions is passed to storage.NewClient for the GCS mirror.
func WithStorageClientOptions(opts ...option.ClientOption) Option {
	return func(s *settings) { s.storageOpts = append(s.storageOpts, opts...) }
}

// WithPubSubClientOptions is passed to pubsub.NewClient for notifications.
func WithPubSubClientOptions(opts ...option.ClientOption) Option {
	return func(s *settings) { s.pubsubOpts = append(s.pubsubOpts, opts...) }
}

// WithTracerProviderOptions is passed to the tracer provider when tracing
// is enabled.
func WithTracerProviderOptions(opts ...sdktrace.TracerProviderOption) Option {
	return func(s *settings) { s.traceOpts = append(s.traceOpts, opts...) }
}

// App holds the services for one run.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	hub      *progress.Hub
	pipeline *pipeline.Pipeline

	publisher       scrape.Publisher
	pubsubClient    *pubsub.Client
	pubsubPublisher *gcppublisher.Publisher
	storageClient   *storage.Client
	tracerProvider  *sdktrace.TracerProvider
}

// New builds every collaborator described by cfg. Optional integrations stay
// off unless configured.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	a := &App{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	if cfg.Telemetry.Tracing {
		tp, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.ServiceName, s.traceOpts...)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		a.tracerProvider = tp
	}
	if err := a.setupProgress(ctx); err != nil {
		return nil, a.abort(err)
	}
	sinks, err := a.setupSinks(ctx, s)
	if err != nil {
		return nil, a.abort(err)
	}
	if err := a.setupPublisher(ctx, s); err != nil {
		return nil, a.abort(err)
	}

	fetcher := s.fetcher
	if fetcher == nil {
		fetcher = a.newFetcher()
	}

	a.pipeline, err = pipeline.New(
		fetcher,
		extract.New(extract.Config{Strict: cfg.Extract.Strict}),
		sinks,
		a.hub,
		sha256.New(),
		system.New(),
		uuid.New(),
		pipeline.Config{DryRun: s.dryRun},
		logger,
	)
	if err != nil {
		return nil, a.abort(fmt.Errorf("build pipeline: %w", err))
	}
	return a, nil
}

func (a *App) newFetcher() *collyfetcher.Fetcher {
	fetchCfg := collyfetcher.Config{
		UserAgent: a.cfg.HTTP.UserAgent,
		Timeout:   a.cfg.HTTP.Timeout,
	}
	a.logger.Debug("using colly fetcher",
		zap.String("user_agent", fetchCfg.UserAgent),
		zap.Duration("timeout", fetchCfg.Timeout),
	)
	return collyfetcher.New(fetchCfg)
}

func (a *App) setupProgress(ctx context.Context) error {
	promSink, err := progresssinks.NewPrometheusSink(a.registry)
	if err != nil {
		return fmt.Errorf("progress prometheus sink: %w", err)
	}
	a.hub = progress.NewHub(progress.Config{
		BaseContext: context.WithoutCancel(ctx),
		Logger:      a.logger.Named("progress_hub"),
	}, promSink, progresssinks.NewLogSink(a.logger.Named("progress")))
	return nil
}

func (a *App) setupSinks(ctx context.Context, s settings) ([]scrape.Sink, error) {
	if s.dryRun {
		a.logger.Info("dry run: outputs will not be written")
		return nil, nil
	}
	localSink, err := local.New(local.Config{BaseDir: a.cfg.Output.BaseDir})
	if err != nil {
		return nil, fmt.Errorf("local sink: %w", err)
	}
	sinks := []scrape.Sink{localSink}

	if !a.cfg.MirrorEnabled() {
		return sinks, nil
	}
	a.storageClient, err = storage.NewClient(ctx, s.storageOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage client init failed: %w", err)
	}
	mirror, err := gcssink.New(a.storageClient, gcssink.Config{
		Bucket: a.cfg.Output.GCSBucket,
		Prefix: a.cfg.Output.GCSPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("gcs sink: %w", err)
	}
	a.logger.Info("mirroring outputs to GCS",
		zap.String("bucket", a.cfg.Output.GCSBucket),
		zap.String("prefix", a.cfg.Output.GCSPrefix),
	)
	return append(sinks, mirror), nil
}

func (a *App) setupPublisher(ctx context.Context, s settings) error {
	if !a.cfg.NotifyEnabled() {
		a.logger.Debug("no Pub/Sub topic configured, using in-memory publisher")
		a.publisher = memorypublisher.New()
		return nil
	}
	var err error
	a.pubsubClient, err = pubsub.NewClient(ctx, a.cfg.Notify.PubSubProject, s.pubsubOpts...)
	if err != nil {
		return fmt.Errorf("pubsub client init failed: %w", err)
	}
	a.pubsubPublisher = gcppublisher.New(a.pubsubClient.Topic(a.cfg.Notify.PubSubTopic))
	a.publisher = a.pubsubPublisher
	a.logger.Info("Pub/Sub publisher initialized",
		zap.String("project", a.cfg.Notify.PubSubProject),
		zap.String("topic", a.cfg.Notify.PubSubTopic),
	)
	return nil
}

// Run executes the pipeline and announces a successful run. A failed
// announcement is logged; the written outputs still stand.
func (a *App) Run(ctx context.Context, opts options.Options) (scrape.RunSummary, error) {
	ctx, span := otel.Tracer("github.com/JakeFAU/json-scraper/internal/app").Start(ctx, "scrape")
	defer span.End()

	summary, err := a.pipeline.Run(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		return summary, err
	}
	id, pubErr := a.publisher.Publish(ctx, summary)
	if pubErr != nil {
		a.logger.Warn("publish run summary failed", zap.String("run_id", summary.RunID), zap.Error(pubErr))
		return summary, nil
	}
	a.logger.Debug("published run summary", zap.String("run_id", summary.RunID), zap.String("message_id", id))
	return summary, nil
}

// Registry exposes the run's metrics.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Publisher exposes the summary publisher.
func (a *App) Publisher() scrape.Publisher {
	return a.publisher
}

// Close flushes progress, pushes metrics when configured, and releases
// clients. Push failures are logged rather than returned.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.hub.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.cfg.PushEnabled() {
		err := metrics.Push(ctx, metrics.PushConfig{
			URL: a.cfg.Metrics.PushgatewayURL,
			Job: a.cfg.Metrics.Job,
		}, a.registry)
		if err != nil {
			a.logger.Warn("metrics push failed", zap.Error(err))
		} else {
			a.logger.Debug("metrics pushed", zap.String("url", a.cfg.Metrics.PushgatewayURL))
		}
	}
	a.releaseClients(&errs)
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) releaseClients(errs *[]error) {
	if a.pubsubPublisher != nil {
		a.pubsubPublisher.Stop()
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			*errs = append(*errs, fmt.Errorf("close pubsub client: %w", err))
		}
	}
	if a.storageClient != nil {
		if err := a.storageClient.Close(); err != nil {
			*errs = append(*errs, fmt.Errorf("close storage client: %w", err))
		}
	}
}

// abort releases whatever New built before err.
func (a *App) abort(err error) error {
	if a.hub != nil {
		_ = a.hub.Close(context.Background())
	}
	var errs []error
	a.releaseClients(&errs)
	if a.tracerProvider != nil {
		_ = a.tracerProvider.Shutdown(context.Background())
	}
	return err
}
