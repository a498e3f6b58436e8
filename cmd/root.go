// Package cmd defines and implements the CLI commands for the talkscraper
// executable.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/offlinetalks/talkscraper/internal/assets"
	"github.com/offlinetalks/talkscraper/internal/catalog"
	"github.com/offlinetalks/talkscraper/internal/config"
	"github.com/offlinetalks/talkscraper/internal/encode"
	"github.com/offlinetalks/talkscraper/internal/fetch"
	"github.com/offlinetalks/talkscraper/internal/logging"
	"github.com/offlinetalks/talkscraper/internal/metrics"
	"github.com/offlinetalks/talkscraper/internal/pipeline"
	"github.com/offlinetalks/talkscraper/internal/site"
	"github.com/offlinetalks/talkscraper/internal/store"
)

var cfgFile string

// svcKeyType is the key for storing the services in the context.
type svcKeyType string

const svcKey svcKeyType = "services"

// phaseRunner is the slice of the pipeline the commands drive. It exists so
// tests can inject a fake pipeline.
type phaseRunner interface {
	Scrape(ctx context.Context) error
	Download(ctx context.Context) error
	Subtitles(ctx context.Context) error
	Encode(ctx context.Context) error
	Render(ctx context.Context) error
}

// services bundles everything a command needs at run time.
type services struct {
	cfg        config.Config
	logger     *zap.Logger
	pipe       phaseRunner
	metricsSrv *http.Server
}

// newServices is the service factory. It's a variable so tests can replace
// it with a factory returning fakes.
var newServices = func(cfgPath string) (*services, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger = logging.WithRun(logger)

	metrics.Init()
	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		metricsSrv = metrics.Serve(cfg.Metrics.Addr, logger)
		logger.Info("Metrics endpoint listening", zap.String("addr", cfg.Metrics.Addr))
	}

	client := fetch.New(fetch.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
	})
	crawler := catalog.NewCrawler(
		client,
		cfg.Site.BrowseURL,
		cfg.Crawler.MaxPages,
		cfg.Crawler.MaxTalks,
		logger,
	)
	extractor := catalog.NewExtractor(client, cfg.Site.SubtitleBaseURL, logger)
	snapshot := store.New(cfg.Build.SnapshotPath())
	manager := assets.NewManager(client, cfg.Build.TalkDir, logger)
	encoder := encode.NewCLI(logger, encode.WithBinary(cfg.Encoder.Binary))
	renderer, err := site.NewRenderer(cfg.Build.HTMLDir(), cfg.Build.ScraperDir(), cfg.Site.Categories, logger)
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}

	pipe := pipeline.New(cfg, crawler, extractor, snapshot, manager, encoder, renderer, logger)
	return &services{
		cfg:        cfg,
		logger:     logger,
		pipe:       pipe,
		metricsSrv: metricsSrv,
	}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "talkscraper",
		Short: "Scrapes a video-talk catalog and builds an offline static site",
		Long: `talkscraper crawls a video-talk catalog site, extracts per-talk
metadata into a snapshot file, downloads and transcodes the media assets,
and renders a categorized static HTML site from the snapshot.

Each phase is idempotent and can be re-run against the same build
directory.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newServices(cfgFile)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), svcKey, svc)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			svc, ok := cmd.Context().Value(svcKey).(*services)
			if !ok || svc == nil {
				return
			}
			if svc.metricsSrv != nil {
				_ = svc.metricsSrv.Close()
			}
			_ = svc.logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml if present)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newSubtitlesCmd())
	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newBuildCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveServices pulls the services out of the command context.
func resolveServices(ctx context.Context) (*services, error) {
	svc, ok := ctx.Value(svcKey).(*services)
	if !ok || svc == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return svc, nil
}
