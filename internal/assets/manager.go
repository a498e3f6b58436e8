// Package assets acquires per-talk media files: the source video, the
// speaker image, the video thumbnail, and the converted subtitle tracks.
// Every operation is idempotent against the raw asset directory, so a
// rerun after a crash honestly resumes where the last run stopped.
package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/offlinetalks/talkscraper/internal/catalog"
	"github.com/offlinetalks/talkscraper/internal/metrics"
	"github.com/offlinetalks/talkscraper/internal/webvtt"
)

// subsDoneMarker is written into a talk's subs directory only after every
// language converted successfully. The reference implementation used the
// directory's existence as the completion signal, which turned a partial
// failure into a permanent "done"; the sentinel closes that gap.
const subsDoneMarker = ".done"

// Fetcher is the subset of the fetch client the manager needs.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
	Download(ctx context.Context, rawURL, dest string) error
}

// Manager downloads a talk's assets into its raw directory.
type Manager struct {
	fetcher Fetcher
	talkDir func(talkID string) string
	logger  *zap.Logger
}

// NewManager builds a Manager. talkDir maps a talk ID to its raw asset
// directory.
func NewManager(fetcher Fetcher, talkDir func(talkID string) string, logger *zap.Logger) *Manager {
	return &Manager{
		fetcher: fetcher,
		talkDir: talkDir,
		logger:  logger,
	}
}

// FetchAssets downloads the talk's video, speaker image, and thumbnail. An
// asset whose destination file already exists is skipped without
// re-validation; a failed download leaves no file behind and is retried on
// the next run.
func (m *Manager) FetchAssets(ctx context.Context, talk catalog.Talk) error {
	dir := m.talkDir(talk.ID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create talk dir %s: %w", dir, err)
	}

	targets := []struct {
		kind string
		url  string
		file string
	}{
		{kind: "video", url: talk.VideoDownloadURL, file: "video.mp4"},
		{kind: "speaker", url: talk.SpeakerPictureURL, file: "speaker.jpg"},
		{kind: "thumbnail", url: talk.ThumbnailURL, file: "thumbnail.jpg"},
	}

	for _, target := range targets {
		if target.url == "" {
			continue
		}
		dest := filepath.Join(dir, target.file)
		if _, err := os.Stat(dest); err == nil {
			m.logger.Info("Asset already present, skipping",
				zap.String("talk", talk.ID),
				zap.String("asset", target.file),
			)
			metrics.ObserveAsset(target.kind, "skipped")
			continue
		}
		m.logger.Info("Downloading asset",
			zap.String("talk", talk.ID),
			zap.String("asset", target.file),
			zap.String("title", talk.Title),
		)
		if err := m.fetcher.Download(ctx, target.url, dest); err != nil {
			// Retried honestly on the next run: nothing was written.
			m.logger.Warn("Asset download failed",
				zap.String("talk", talk.ID),
				zap.String("asset", target.file),
				zap.Error(err),
			)
			metrics.ObserveAsset(target.kind, "failed")
			continue
		}
		metrics.ObserveAsset(target.kind, "downloaded")
	}
	return nil
}

// DownloadSubtitles fetches every declared caption track, converts it to
// WebVTT, and writes it under the talk's subs directory. A talk whose subs
// directory carries the completion sentinel is skipped entirely; a subs
// directory without the sentinel (a previous partial failure) is
// re-processed from the start.
func (m *Manager) DownloadSubtitles(ctx context.Context, talk catalog.Talk) error {
	subsDir := filepath.Join(m.talkDir(talk.ID), "subs")
	marker := filepath.Join(subsDir, subsDoneMarker)

	if _, err := os.Stat(marker); err == nil {
		m.logger.Info("Subtitles already complete, skipping",
			zap.String("talk", talk.ID),
		)
		metrics.ObserveSubtitle("skipped")
		return nil
	}
	if err := os.MkdirAll(subsDir, 0o750); err != nil {
		return fmt.Errorf("create subs dir %s: %w", subsDir, err)
	}

	m.logger.Info("Downloading subtitles",
		zap.String("talk", talk.ID),
		zap.String("title", talk.Title),
		zap.Int("languages", len(talk.Subtitles)),
	)
	for _, sub := range talk.Subtitles {
		doc, err := m.fetcher.Get(ctx, sub.SourceURL)
		if err != nil {
			return fmt.Errorf("fetch subtitle %s/%s: %w", talk.ID, sub.LanguageCode, err)
		}
		track, err := webvtt.Convert(doc)
		if err != nil {
			return fmt.Errorf("convert subtitle %s/%s: %w", talk.ID, sub.LanguageCode, err)
		}
		dest := filepath.Join(subsDir, fmt.Sprintf("subs_%s.vtt", sub.LanguageCode))
		if err := os.WriteFile(dest, []byte(track), 0o600); err != nil {
			return fmt.Errorf("write subtitle %s: %w", dest, err)
		}
		metrics.ObserveSubtitle("written")
	}

	if err := os.WriteFile(marker, nil, 0o600); err != nil {
		return fmt.Errorf("write completion marker %s: %w", marker, err)
	}
	return nil
}
