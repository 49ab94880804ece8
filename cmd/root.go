// Package cmd defines the jsonscraper command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/json-scraper/internal/config"
	"github.com/JakeFAU/json-scraper/internal/logging"
	"github.com/JakeFAU/json-scraper/internal/report"
)

// cliState is built once per invocation by the root command's pre-run hook
// and shared with the subcommands.
type cliState struct {
	cfg      config.Config
	logger   *zap.Logger
	reporter *report.Reporter
}

// errNotInitialized means a subcommand ran without the root pre-run hook.
var errNotInitialized = errors.New("application settings not initialized")

func (s *cliState) ready() error {
	if s.logger == nil {
		return errNotInitialized
	}
	return nil
}

// newRootCmd creates the root command and wires its subcommands to st.
func newRootCmd(st *cliState) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "jsonscraper",
		Short: "Fetch JSON documents, extract fields, and write output files.",
		Long: `jsonscraper reads an options file that declares output documents, the URLs
that feed them, and how each field is pulled out of a response. Every distinct
URL is fetched once, all fetches complete before extraction begins, and the run
either writes every output or fails with a single error.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Settings failures still reach the Actions runner.
			st.reporter = report.New(report.Detect(os.Getenv), githubactions.WithWriter(cmd.OutOrStdout()))
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			st.cfg = cfg
			st.logger = logger
			st.reporter = report.New(cfg.Report.GitHubActions, githubactions.WithWriter(cmd.OutOrStdout()))
			return nil
		},

		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if st.logger != nil {
				// Sync fails on console file descriptors; nothing to do about it.
				_ = st.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (YAML or JSON); SCRAPER_* env vars override it")

	cmd.AddCommand(newRunCmd(st))
	cmd.AddCommand(newValidateCmd(st))

	return cmd
}

// execute runs the command line in args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	st := &cliState{}
	root := newRootCmd(st)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if st.logger != nil {
		st.logger.Error("command failed", zap.Error(err))
		_ = st.logger.Sync()
	} else {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	st.reporter.Failure(err)
	return 1
}

// Execute is the main entry point. It exits the process with code 1 when the
// command fails.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
