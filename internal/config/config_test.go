package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinetalks/talkscraper/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://new.ted.com/talks/browse", cfg.Site.BrowseURL)
	assert.Equal(t, config.DefaultCategories, cfg.Site.Categories)
	assert.Equal(t, "build", cfg.Build.Dir)
	assert.Zero(t, cfg.Crawler.MaxPages)
	assert.Zero(t, cfg.Crawler.MaxTalks)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "ffmpeg", cfg.Encoder.Binary)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	payload := []byte(`
site:
  browse_url: http://catalog.example/talks/browse
  categories: ["science"]
build:
  dir: /tmp/talks-build
crawler:
  max_pages: 2
  max_talks: 5
http:
  timeout: 5s
`)
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://catalog.example/talks/browse", cfg.Site.BrowseURL)
	assert.Equal(t, []string{"science"}, cfg.Site.Categories)
	assert.Equal(t, "/tmp/talks-build", cfg.Build.Dir)
	assert.Equal(t, 2, cfg.Crawler.MaxPages)
	assert.Equal(t, 5, cfg.Crawler.MaxTalks)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		cfg, err := config.Load("")
		require.NoError(t, err)
		return cfg
	}

	t.Run("EmptyBrowseURL", func(t *testing.T) {
		cfg := base()
		cfg.Site.BrowseURL = " "
		assert.Error(t, cfg.Validate())
	})

	t.Run("NoCategories", func(t *testing.T) {
		cfg := base()
		cfg.Site.Categories = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("NegativeBounds", func(t *testing.T) {
		cfg := base()
		cfg.Crawler.MaxPages = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("ZeroTimeout", func(t *testing.T) {
		cfg := base()
		cfg.HTTP.Timeout = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestBuildPaths(t *testing.T) {
	b := config.BuildConfig{Dir: "/srv/build"}
	assert.Equal(t, filepath.Join("/srv/build", "scraper"), b.ScraperDir())
	assert.Equal(t, filepath.Join("/srv/build", "html"), b.HTMLDir())
	assert.Equal(t, filepath.Join("/srv/build", "scraper", "talks.json"), b.SnapshotPath())
	assert.Equal(t, filepath.Join("/srv/build", "scraper", "1907"), b.TalkDir("1907"))
}
