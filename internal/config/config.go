// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs for a scrape run.
type Config struct {
	Crawl    CrawlConfig    `mapstructure:"crawl"`
	Renderer RendererConfig `mapstructure:"renderer"`
	Output   OutputConfig   `mapstructure:"output"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	DB       DBConfig       `mapstructure:"db"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// CrawlConfig governs frontier behavior.
type CrawlConfig struct {
	StartURL      string `mapstructure:"start_url"`
	MaxDepth      int    `mapstructure:"max_depth"`
	UserAgent     string `mapstructure:"user_agent"`
	RespectRobots bool   `mapstructure:"respect_robots"`
}

// RendererConfig configures the rendering engine.
type RendererConfig struct {
	Engine            string  `mapstructure:"engine"` // "chromedp" or "http"
	NavTimeoutSeconds int     `mapstructure:"nav_timeout_seconds"`
	SettleMillis      int     `mapstructure:"settle_millis"`
	DomainQPS         float64 `mapstructure:"domain_qps"`
}

// OutputConfig sets the run-scoped artifact directory.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// ServerConfig controls the optional read-only status server.
// A port of 0 disables it.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// StorageConfig configures the optional GCS artifact mirror.
type StorageConfig struct {
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// DBConfig controls the optional Postgres page-record store.
// An empty DSN disables it.
type DBConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// PubSubConfig holds metadata for the optional run-completion event.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITESCRIBE")
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
	v.SetDefault("crawl.start_url", "https://example.com")
	v.SetDefault("crawl.max_depth", 2)
	v.SetDefault("crawl.user_agent", "sitescribe/0.1")
	v.SetDefault("crawl.respect_robots", false)
	v.SetDefault("renderer.engine", "chromedp")
	v.SetDefault("renderer.nav_timeout_seconds", 60)
	v.SetDefault("renderer.settle_millis", 250)
	v.SetDefault("renderer.domain_qps", 0)
	v.SetDefault("output.dir", "output")
	v.SetDefault("server.port", 0)
	v.SetDefault("db.table", "pages")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawl.StartURL == "" {
		return fmt.Errorf("crawl.start_url must be set")
	}
	if c.Crawl.MaxDepth < 0 {
		return fmt.Errorf("crawl.max_depth must be >= 0")
	}
	switch c.Renderer.Engine {
	case "chromedp", "http":
	default:
		return fmt.Errorf("renderer.engine must be chromedp or http, got %q", c.Renderer.Engine)
	}
	if c.Renderer.NavTimeoutSeconds <= 0 {
		return fmt.Errorf("renderer.nav_timeout_seconds must be > 0")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if c.Server.Port < 0 {
		return fmt.Errorf("server.port must be >= 0")
	}
	return nil
}

// NavTimeout converts the renderer timeout knob into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Renderer.NavTimeoutSeconds) * time.Second
}

// SettleDelay is the post-navigation quiescence wait.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Renderer.SettleMillis) * time.Millisecond
}
