// Package config loads and validates scraper configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultCategories is the fixed set of topic keywords the site is
// partitioned by. A talk belongs to a category when the category appears in
// the talk's keyword list.
var DefaultCategories = []string{
	"technology", "entertainment", "design", "business", "science", "global issues",
}

// Config captures all pipeline configuration knobs loaded via Viper.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	Build   BuildConfig   `mapstructure:"build"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Encoder EncoderConfig `mapstructure:"encoder"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SiteConfig identifies the catalog site being scraped.
type SiteConfig struct {
	// BrowseURL is the paginated talk listing. Page N is reached by
	// appending the page query parameter.
	BrowseURL string `mapstructure:"browse_url"`
	// SubtitleBaseURL is the host serving the per-talk caption JSON.
	SubtitleBaseURL string `mapstructure:"subtitle_base_url"`
	// Categories is the fixed category set used to partition the site.
	Categories []string `mapstructure:"categories"`
}

// BuildConfig sets the on-disk layout of the build tree.
type BuildConfig struct {
	Dir string `mapstructure:"dir"`
}

// ScraperDir is where raw downloaded assets and the snapshot live.
func (b BuildConfig) ScraperDir() string { return filepath.Join(b.Dir, "scraper") }

// HTMLDir is the root of the rendered static site.
func (b BuildConfig) HTMLDir() string { return filepath.Join(b.Dir, "html") }

// SnapshotPath is the fixed location of the metadata snapshot file.
func (b BuildConfig) SnapshotPath() string { return filepath.Join(b.ScraperDir(), "talks.json") }

// TalkDir is the raw asset directory for one talk.
func (b BuildConfig) TalkDir(talkID string) string { return filepath.Join(b.ScraperDir(), talkID) }

// CrawlerConfig bounds the catalog crawl. Zero means unbounded; the
// reference behavior of stopping after the first page and first link was a
// bug, so truncation is opt-in configuration here.
type CrawlerConfig struct {
	MaxPages int `mapstructure:"max_pages"`
	MaxTalks int `mapstructure:"max_talks"`
}

// HTTPConfig configures the shared fetch client.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// EncoderConfig configures the external video encoder.
type EncoderConfig struct {
	Binary string `mapstructure:"binary"`
}

// MetricsConfig controls the optional metrics endpoint. An empty address
// disables the listener entirely.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TALKSCRAPER")
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
	v.SetDefault("site.browse_url", "http://new.ted.com/talks/browse")
	v.SetDefault("site.subtitle_base_url", "http://www.ted.com")
	v.SetDefault("site.categories", DefaultCategories)
	v.SetDefault("build.dir", "build")
	v.SetDefault("crawler.max_pages", 0)
	v.SetDefault("crawler.max_talks", 0)
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.user_agent", "talkscraper/1.0 (+https://github.com/offlinetalks/talkscraper)")
	v.SetDefault("encoder.binary", "ffmpeg")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.development", false)
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures deep inside a phase.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Site.BrowseURL) == "" {
		return errors.New("site.browse_url is required")
	}
	if strings.TrimSpace(c.Site.SubtitleBaseURL) == "" {
		return errors.New("site.subtitle_base_url is required")
	}
	if len(c.Site.Categories) == 0 {
		return errors.New("site.categories must name at least one category")
	}
	if strings.TrimSpace(c.Build.Dir) == "" {
		return errors.New("build.dir is required")
	}
	if c.Crawler.MaxPages < 0 || c.Crawler.MaxTalks < 0 {
		return errors.New("crawler bounds must not be negative")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if strings.TrimSpace(c.Encoder.Binary) == "" {
		return errors.New("encoder.binary is required")
	}
	return nil
}
