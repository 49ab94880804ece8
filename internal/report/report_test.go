package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-githubactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/json-scraper/internal/scrape"
)

func newTestReporter(t *testing.T, enabled bool, env map[string]string) (*Reporter, *bytes.Buffer, string) {
	t.Helper()
	outputFile := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(outputFile, nil, 0o600))
	getenv := func(key string) string {
		if key == "GITHUB_OUTPUT" {
			return outputFile
		}
		return env[key]
	}
	var buf bytes.Buffer
	r := New(enabled, githubactions.WithWriter(&buf), githubactions.WithGetenv(getenv))
	return r, &buf, outputFile
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSuccessSetsOutputs(t *testing.T) {
	t.Parallel()

	r, _, outputFile := newTestReporter(t, true, nil)
	r.Success(scrape.RunSummary{
		RunID:   "run-1",
		Outputs: []scrape.OutputSummary{{Path: "a.json"}, {Path: "out/b.json"}},
	})

	content := readFile(t, outputFile)
	assert.Contains(t, content, OutputSuccess)
	assert.Contains(t, content, "true")
	assert.Contains(t, content, "run-1")
	assert.Contains(t, content, "a.json,out/b.json")
}

func TestFailureAnnotatesError(t *testing.T) {
	t.Parallel()

	r, buf, outputFile := newTestReporter(t, true, nil)
	r.Failure(errors.New(`request to "https://x" failed with code 404`))

	assert.Contains(t, buf.String(), "::error::")
	assert.Contains(t, buf.String(), "failed with code 404")
	content := readFile(t, outputFile)
	assert.Contains(t, content, OutputSuccess)
	assert.Contains(t, content, "false")
}

func TestDisabledReporterWritesNothing(t *testing.T) {
	t.Parallel()

	r, buf, outputFile := newTestReporter(t, false, map[string]string{"INPUT_OPTIONS": "custom.json"})
	r.Success(scrape.RunSummary{RunID: "run-1"})
	r.Failure(errors.New("boom"))

	assert.Empty(t, buf.String())
	assert.Empty(t, readFile(t, outputFile))
	assert.Empty(t, r.OptionsInput())
	assert.False(t, r.Enabled())
}

func TestOptionsInput(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestReporter(t, true, map[string]string{"INPUT_OPTIONS": " config/options.json "})
	assert.Equal(t, "config/options.json", r.OptionsInput())
}

func TestDetect(t *testing.T) {
	t.Parallel()

	assert.True(t, Detect(func(string) string { return "true" }))
	assert.False(t, Detect(func(string) string { return "" }))
}

func TestNilReporter(t *testing.T) {
	t.Parallel()

	var r *Reporter
	assert.False(t, r.Enabled())
	r.Success(scrape.RunSummary{})
	r.Failure(errors.New("boom"))
	assert.Empty(t, r.OptionsInput())
}
