// Package metrics labels fetch targets and pushes a run's collectors to a
// Prometheus Pushgateway once the run finishes.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// PushConfig locates the Pushgateway.
type PushConfig struct {
	URL string
	Job string
	// Grouping adds extra grouping labels, for example the run ID.
	Grouping map[string]string
	// Client overrides the HTTP client; nil uses http.DefaultClient.
	Client push.HTTPDoer
}

// Push replaces the metrics stored for the job and grouping with everything
// gathered from g.
func Push(ctx context.Context, cfg PushConfig, g prometheus.Gatherer) error {
	if cfg.URL == "" {
		return errors.New("pushgateway url is required")
	}
	if cfg.Job == "" {
		return errors.New("pushgateway job is required")
	}
	pusher := push.New(cfg.URL, cfg.Job).Gatherer(g)
	for name, value := range cfg.Grouping {
		pusher = pusher.Grouping(name, value)
	}
	if cfg.Client != nil {
		pusher = pusher.Client(cfg.Client)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", cfg.URL, err)
	}
	return nil
}
