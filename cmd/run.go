package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/json-scraper/internal/app"
	"github.com/JakeFAU/json-scraper/internal/config"
	"github.com/JakeFAU/json-scraper/internal/options"
	"github.com/JakeFAU/json-scraper/internal/report"
	"github.com/JakeFAU/json-scraper/internal/scrape"
)

// closeTimeout bounds flushing progress and pushing metrics after a run.
const closeTimeout = 10 * time.Second

type runFlags struct {
	options string
	strict  bool
	dryRun  bool
}

// runner is the part of *app.App the run command needs.
type runner interface {
	Run(ctx context.Context, opts options.Options) (scrape.RunSummary, error)
	Close(ctx context.Context) error
}

// newApp is the application factory, replaced in tests.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...app.Option) (runner, error) {
	return app.New(ctx, cfg, logger, opts...)
}

func newRunCmd(st *cliState) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, extract, and write every declared output",
		Long: `Loads the options file, fetches every distinct URL concurrently, extracts the
declared fields once all responses are in, and writes each output document.
Any failure aborts the run before or instead of writing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, st, flags)
		},
	}
	cmd.Flags().StringVar(&flags.options, "options", "", "options file (default: action input, then the options setting)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on missing slice markers and non-numeric numbers")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "fetch and extract but log documents instead of writing them")
	return cmd
}

func runRun(cmd *cobra.Command, st *cliState, flags runFlags) error {
	if err := st.ready(); err != nil {
		return err
	}
	path := resolveOptionsPath(flags.options, st.reporter, st.cfg)
	opts, err := loadOptions(st, path)
	if err != nil {
		return err
	}
	st.logger.Debug("loaded options", zap.String("path", path), zap.Int("outputs", len(opts.Outputs)))

	cfg := st.cfg
	if flags.strict {
		cfg.Extract.Strict = true
	}
	a, err := newApp(cmd.Context(), cfg, st.logger, app.WithDryRun(flags.dryRun))
	if err != nil {
		return fmt.Errorf("failed to initialize application services: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), closeTimeout)
		defer cancel()
		if cerr := a.Close(ctx); cerr != nil {
			st.logger.Warn("failed to close application services", zap.Error(cerr))
		}
	}()

	summary, err := a.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	st.reporter.Success(summary)
	return nil
}

// resolveOptionsPath picks the options file: the flag, then the GitHub
// Actions input, then the configured setting.
func resolveOptionsPath(flag string, reporter *report.Reporter, cfg config.Config) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	if p := reporter.OptionsInput(); p != "" {
		return p
	}
	return cfg.Options
}

func loadOptions(st *cliState, path string) (options.Options, error) {
	opts, err := options.Load(path)
	if err != nil {
		return options.Options{}, err
	}
	for _, w := range opts.Warnings {
		st.logger.Warn("tolerated malformed value rule", zap.String("path", path), zap.String("detail", w))
	}
	return opts, nil
}
