// Package pipeline orchestrates the scrape, download, subtitle, encode, and
// render phases. Each phase is an explicit function from the persisted
// snapshot to derived artifacts; no state is shared between phases except
// the snapshot file itself.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/offlinetalks/talkscraper/internal/catalog"
	"github.com/offlinetalks/talkscraper/internal/config"
	"github.com/offlinetalks/talkscraper/internal/encode"
	"github.com/offlinetalks/talkscraper/internal/metrics"
	"github.com/offlinetalks/talkscraper/internal/store"
)

// Crawler lists every talk-page URL in the catalog.
type Crawler interface {
	Crawl(ctx context.Context) ([]string, error)
}

// Extractor builds a talk record from one talk page. A nil record with a
// nil error marks a skipped page.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (*catalog.Talk, error)
}

// Store persists and reloads the snapshot.
type Store interface {
	Save(talks []catalog.Talk) error
	Load() ([]catalog.Talk, error)
}

// AssetManager acquires a talk's media files.
type AssetManager interface {
	FetchAssets(ctx context.Context, talk catalog.Talk) error
	DownloadSubtitles(ctx context.Context, talk catalog.Talk) error
}

// Renderer writes the static site from a loaded snapshot.
type Renderer interface {
	RenderDetailPages(talks []catalog.Talk) error
	RenderCategoryIndexes(talks []catalog.Talk) error
	WriteCategoryFeeds(talks []catalog.Talk) error
	CopyStaticAssets(talks []catalog.Talk) error
}

// Pipeline binds the phase implementations together. All phases run
// sequentially and block on I/O; there is deliberately no concurrency
// between talks or phases.
type Pipeline struct {
	cfg       config.Config
	crawler   Crawler
	extractor Extractor
	store     Store
	assets    AssetManager
	encoder   encode.Client
	renderer  Renderer
	logger    *zap.Logger
}

// New builds a Pipeline.
func New(
	cfg config.Config,
	crawler Crawler,
	extractor Extractor,
	snapshot Store,
	assets AssetManager,
	encoder encode.Client,
	renderer Renderer,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		crawler:   crawler,
		extractor: extractor,
		store:     snapshot,
		assets:    assets,
		encoder:   encoder,
		renderer:  renderer,
		logger:    logger,
	}
}

// Scrape crawls the catalog, extracts a record per talk page, and persists
// the snapshot. Pages missing mandatory fields are dropped, not escalated;
// duplicate IDs keep the first record seen.
func (p *Pipeline) Scrape(ctx context.Context) error {
	urls, err := p.crawler.Crawl(ctx)
	if err != nil {
		return fmt.Errorf("crawl catalog: %w", err)
	}
	p.logger.Info("Crawl finished", zap.Int("talk_pages", len(urls)))

	seen := make(map[string]bool)
	talks := make([]catalog.Talk, 0, len(urls))
	for _, pageURL := range urls {
		talk, err := p.extractor.Extract(ctx, pageURL)
		if err != nil {
			return fmt.Errorf("extract metadata: %w", err)
		}
		if talk == nil {
			metrics.ObserveTalkSkipped()
			continue
		}
		if seen[talk.ID] {
			p.logger.Warn("Duplicate talk id, keeping first record",
				zap.String("talk", talk.ID),
			)
			continue
		}
		seen[talk.ID] = true
		talks = append(talks, *talk)
		metrics.ObserveTalkExtracted()
		p.logger.Info("Extracted talk",
			zap.String("talk", talk.ID),
			zap.String("title", talk.Title),
		)
	}

	if err := p.store.Save(talks); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	p.logger.Info("Snapshot persisted", zap.Int("talks", len(talks)))
	return nil
}

// Download acquires every talk's video, speaker image, and thumbnail.
func (p *Pipeline) Download(ctx context.Context) error {
	talks, err := p.loadSnapshot()
	if err != nil {
		return err
	}
	for _, talk := range talks {
		if err := p.assets.FetchAssets(ctx, talk); err != nil {
			return fmt.Errorf("fetch assets for talk %s: %w", talk.ID, err)
		}
	}
	return nil
}

// Subtitles materializes every talk's caption tracks. A failing talk is
// logged and skipped so one bad caption feed cannot wedge the whole run;
// without its completion sentinel it is retried next time.
func (p *Pipeline) Subtitles(ctx context.Context) error {
	talks, err := p.loadSnapshot()
	if err != nil {
		return err
	}
	for _, talk := range talks {
		if err := p.assets.DownloadSubtitles(ctx, talk); err != nil {
			p.logger.Warn("Subtitle download failed",
				zap.String("talk", talk.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Encode transcodes each talk's downloaded video into every category
// detail directory it belongs to. Existing outputs are skipped; failed
// encodes are logged and the run continues.
func (p *Pipeline) Encode(ctx context.Context) error {
	talks, err := p.loadSnapshot()
	if err != nil {
		return err
	}
	for _, talk := range talks {
		input := filepath.Join(p.cfg.Build.TalkDir(talk.ID), "video.mp4")
		if _, err := os.Stat(input); err != nil {
			p.logger.Warn("Source video missing, skipping encode",
				zap.String("talk", talk.ID),
			)
			continue
		}
		for _, category := range talk.Categories(p.cfg.Site.Categories) {
			output := filepath.Join(p.cfg.Build.HTMLDir(), category, talk.ID, "video.webm")
			if _, err := os.Stat(output); err == nil {
				p.logger.Info("Video already encoded, skipping",
					zap.String("talk", talk.ID),
					zap.String("category", category),
				)
				metrics.ObserveEncode("skipped")
				continue
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
				return fmt.Errorf("create encode dir: %w", err)
			}
			p.logger.Info("Converting video",
				zap.String("talk", talk.ID),
				zap.String("title", talk.Title),
				zap.String("category", category),
			)
			if err := p.encoder.Encode(ctx, input, output); err != nil {
				p.logger.Error("Encode failed",
					zap.String("talk", talk.ID),
					zap.Error(err),
				)
				metrics.ObserveEncode("failed")
				continue
			}
			metrics.ObserveEncode("succeeded")
		}
	}
	return nil
}

// Render writes the full static site: detail pages, category indexes,
// category feeds, and copied assets.
func (p *Pipeline) Render(_ context.Context) error {
	talks, err := p.loadSnapshot()
	if err != nil {
		return err
	}
	if err := p.renderer.RenderDetailPages(talks); err != nil {
		return fmt.Errorf("render detail pages: %w", err)
	}
	if err := p.renderer.RenderCategoryIndexes(talks); err != nil {
		return fmt.Errorf("render category indexes: %w", err)
	}
	if err := p.renderer.WriteCategoryFeeds(talks); err != nil {
		return fmt.Errorf("write category feeds: %w", err)
	}
	if err := p.renderer.CopyStaticAssets(talks); err != nil {
		return fmt.Errorf("copy static assets: %w", err)
	}
	p.logger.Info("Site rendered", zap.Int("talks", len(talks)))
	return nil
}

// loadSnapshot loads the snapshot and turns a missing file into the
// user-facing precondition failure every post-scrape phase shares.
func (p *Pipeline) loadSnapshot() ([]catalog.Talk, error) {
	talks, err := p.store.Load()
	if err != nil {
		if errors.Is(err, store.ErrMissingSnapshot) {
			return nil, err
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return talks, nil
}
