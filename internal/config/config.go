// Package config loads and validates application settings via Viper. The
// scrape itself is described by the separate options file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to every environment override, e.g.
// SCRAPER_HTTP_TIMEOUT for http.timeout.
const EnvPrefix = "SCRAPER"

// Config captures all settings loaded via Viper.
type Config struct {
	// Options is the path of the options file.
	Options   string          `mapstructure:"options"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Output    OutputConfig    `mapstructure:"output"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Report    ReportConfig    `mapstructure:"report"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// HTTPConfig configures the fetcher.
type HTTPConfig struct {
	UserAgent string `mapstructure:"user_agent"`
	// Timeout bounds each request; zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ExtractConfig controls extraction leniency.
type ExtractConfig struct {
	Strict bool `mapstructure:"strict"`
}

// OutputConfig locates written documents.
type OutputConfig struct {
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	GCSPrefix string `mapstructure:"gcs_prefix"`
}

// NotifyConfig holds the optional Pub/Sub destination for run summaries.
type NotifyConfig struct {
	PubSubProject string `mapstructure:"pubsub_project"`
	PubSubTopic   string `mapstructure:"pubsub_topic"`
}

// MetricsConfig locates the optional Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// ReportConfig toggles GitHub Actions workflow commands.
type ReportConfig struct {
	GitHubActions bool `mapstructure:"github_actions"`
}

// TelemetryConfig toggles OpenTelemetry tracing.
type TelemetryConfig struct {
	Tracing     bool   `mapstructure:"tracing"`
	ServiceName string `mapstructure:"service_name"`
}

// Load builds a Config from an optional file plus environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("options", "options.json")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("http.user_agent", "json-scraper/1.0")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("extract.strict", false)
	v.SetDefault("output.base_dir", ".")
	v.SetDefault("output.gcs_bucket", "")
	v.SetDefault("output.gcs_prefix", "")
	v.SetDefault("notify.pubsub_project", "")
	v.SetDefault("notify.pubsub_topic", "")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "json_scraper")
	v.SetDefault("report.github_actions", strings.EqualFold(os.Getenv("GITHUB_ACTIONS"), "true"))
	v.SetDefault("telemetry.tracing", false)
	v.SetDefault("telemetry.service_name", "json-scraper")
}

// Validate enforces required values and consistent combinations.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Options) == "" {
		return fmt.Errorf("options must not be empty")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must be >= 0")
	}
	if strings.TrimSpace(c.Output.BaseDir) == "" {
		return fmt.Errorf("output.base_dir must not be empty")
	}
	if c.Output.GCSPrefix != "" && c.Output.GCSBucket == "" {
		return fmt.Errorf("output.gcs_bucket must be set when output.gcs_prefix is set")
	}
	if c.Notify.PubSubTopic != "" && c.Notify.PubSubProject == "" {
		return fmt.Errorf("notify.pubsub_project must be set when notify.pubsub_topic is set")
	}
	if c.Metrics.PushgatewayURL != "" && c.Metrics.Job == "" {
		return fmt.Errorf("metrics.job must be set when metrics.pushgateway_url is set")
	}
	if c.Telemetry.Tracing && strings.TrimSpace(c.Telemetry.ServiceName) == "" {
		return fmt.Errorf("telemetry.service_name must be set when telemetry.tracing is enabled")
	}
	return nil
}

// MirrorEnabled reports whether outputs are also uploaded to GCS.
func (c Config) MirrorEnabled() bool {
	return c.Output.GCSBucket != ""
}

// NotifyEnabled reports whether run summaries are published.
func (c Config) NotifyEnabled() bool {
	return c.Notify.PubSubTopic != ""
}

// PushEnabled reports whether metrics are pushed at the end of a run.
func (c Config) PushEnabled() bool {
	return c.Metrics.PushgatewayURL != ""
}
