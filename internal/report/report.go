// Package report signals run outcomes to the GitHub Actions runner that
// launched the process: a "success" step output, an error annotation on
// failure, and the "options" action input.
package report

import (
	"strings"

	"github.com/sethvargo/go-githubactions"

	"github.com/JakeFAU/json-scraper/internal/scrape"
)

// Step output names.
const (
	OutputSuccess = "success"
	OutputRunID   = "run_id"
	OutputFiles   = "outputs"
	InputOptions  = "options"
)

// Reporter writes workflow commands when enabled and is a no-op otherwise.
type Reporter struct {
	action  *githubactions.Action
	enabled bool
}

// New builds a Reporter. opts are passed to githubactions.New, which lets
// tests swap the writer and environment.
func New(enabled bool, opts ...githubactions.Option) *Reporter {
	return &Reporter{action: githubactions.New(opts...), enabled: enabled}
}

// Detect reports whether getenv describes a GitHub Actions runner.
func Detect(getenv func(string) string) bool {
	return strings.EqualFold(getenv("GITHUB_ACTIONS"), "true")
}

// Enabled reports whether workflow commands are written.
func (r *Reporter) Enabled() bool {
	return r != nil && r.enabled
}

// OptionsInput returns the "options" action input, or "" when unset or
// disabled.
func (r *Reporter) OptionsInput() string {
	if !r.Enabled() {
		return ""
	}
	return r.action.GetInput(InputOptions)
}

// Success marks the step successful and exposes the run's identity.
func (r *Reporter) Success(summary scrape.RunSummary) {
	if !r.Enabled() {
		return
	}
	r.action.SetOutput(OutputSuccess, "true")
	r.action.SetOutput(OutputRunID, summary.RunID)
	paths := make([]string, len(summary.Outputs))
	for i, out := range summary.Outputs {
		paths[i] = out.Path
	}
	r.action.SetOutput(OutputFiles, strings.Join(paths, ","))
	r.action.Infof("wrote %d output(s)", len(paths))
}

// Failure annotates err and marks the step failed.
func (r *Reporter) Failure(err error) {
	if !r.Enabled() || err == nil {
		return
	}
	r.action.Errorf("%s", err.Error())
	r.action.SetOutput(OutputSuccess, "false")
}
