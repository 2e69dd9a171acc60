// Package config handles loading, validation and access to configuration
// values from the config file, environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultGoogleDomain  = "google.com"
	DefaultSafe          = "active"
	DefaultPageDelay     = 2 * time.Second
	DefaultRunTimeout    = 15 * time.Minute
	DefaultPollInterval  = 5 * time.Second
	DefaultRelatedPolicy = "dedupe"
	DefaultDepth         = 3
)

// ErrMissingSerpAPIKey is returned when no SerpAPI key is configured.
var ErrMissingSerpAPIKey = errors.New("serpapi api key is not configured")

// ErrMissingApifyToken is returned when the scrape stage is requested
// without an Apify token.
var ErrMissingApifyToken = errors.New("apify token is not configured")

// SerpAPIConfig holds SerpAPI credentials and locale parameters.
type SerpAPIConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	GoogleDomain string        `mapstructure:"google_domain"`
	GL           string        `mapstructure:"gl"`
	HL           string        `mapstructure:"hl"`
	CR           string        `mapstructure:"cr"`
	LR           string        `mapstructure:"lr"`
	Safe         string        `mapstructure:"safe"`
	PageDelay    time.Duration `mapstructure:"page_delay"`
}

// ApifyConfig holds the external-scraper credentials and run bounds.
type ApifyConfig struct {
	Token        string        `mapstructure:"token"`
	ActorID      string        `mapstructure:"actor_id"`
	RunTimeout   time.Duration `mapstructure:"run_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// StoreConfig holds persistence options.
type StoreConfig struct {
	// RelatedPolicy is "dedupe" or "append" for related-content rows.
	RelatedPolicy string `mapstructure:"related_policy"`
}

// OutputConfig holds output locations.
type OutputConfig struct {
	// Dir is the run output root. Empty means a timestamped directory under
	// ./tikspyder-data.
	Dir string `mapstructure:"dir"`
	// DownloadsDir is a legacy downloaded-media directory consulted when
	// listing candidate links.
	DownloadsDir string `mapstructure:"downloads_dir"`
}

// Config is the application configuration.
type Config struct {
	Debug   bool          `mapstructure:"debug"`
	Output  OutputConfig  `mapstructure:"output"`
	SerpAPI SerpAPIConfig `mapstructure:"serpapi"`
	Apify   ApifyConfig   `mapstructure:"apify"`
	Store   StoreConfig   `mapstructure:"store"`
}

// SetDefaults registers defaults on the given viper instance. Every key is
// registered, including empty ones: AllSettings only reports known keys, so
// an unregistered key would never pick up its environment value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("serpapi.api_key", "")
	v.SetDefault("serpapi.google_domain", DefaultGoogleDomain)
	v.SetDefault("serpapi.gl", "")
	v.SetDefault("serpapi.hl", "")
	v.SetDefault("serpapi.cr", "")
	v.SetDefault("serpapi.lr", "")
	v.SetDefault("serpapi.safe", DefaultSafe)
	v.SetDefault("serpapi.page_delay", DefaultPageDelay)

	v.SetDefault("apify.token", "")
	v.SetDefault("apify.actor_id", "")
	v.SetDefault("apify.run_timeout", DefaultRunTimeout)
	v.SetDefault("apify.poll_interval", DefaultPollInterval)

	v.SetDefault("store.related_policy", DefaultRelatedPolicy)

	v.SetDefault("output.dir", "")
	v.SetDefault("output.downloads_dir", "")
}

// Load builds a Config from the given viper instance.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("build config decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if cfg.Store.RelatedPolicy != "dedupe" && cfg.Store.RelatedPolicy != "append" {
		return nil, fmt.Errorf("store.related_policy must be dedupe or append, got %q",
			cfg.Store.RelatedPolicy)
	}

	return &cfg, nil
}

// ValidateCollect checks the credentials a collection run needs.
func (c *Config) ValidateCollect(scrape bool) error {
	if c.SerpAPI.APIKey == "" {
		return ErrMissingSerpAPIKey
	}
	if scrape && c.Apify.Token == "" {
		return ErrMissingApifyToken
	}
	return nil
}

// SanitizeOutput normalizes an output path to forward slashes with no
// trailing slash.
func SanitizeOutput(path string) string {
	out := strings.ReplaceAll(path, "\\", "/")
	for len(out) > 1 && strings.HasSuffix(out, "/") {
		out = strings.TrimSuffix(out, "/")
	}
	return out
}
