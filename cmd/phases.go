package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// runPhase resolves the services and invokes one pipeline phase.
func runPhase(cmd *cobra.Command, phase func(*services, context.Context) error) error {
	svc, err := resolveServices(cmd.Context())
	if err != nil {
		return err
	}
	return phase(svc, cmd.Context())
}

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Crawls the catalog and persists the metadata snapshot",
		Long: `Paginates the browse listing, extracts a metadata record from every
talk page, and writes the whole collection to the snapshot file. Talk pages
missing mandatory fields are dropped. Every other command requires the
snapshot this one produces.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPhase(cmd, func(svc *services, ctx context.Context) error {
				return svc.pipe.Scrape(ctx)
			})
		},
	}
}

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Downloads every talk's video, speaker image, and thumbnail",
		Long: `Reloads the snapshot and downloads each talk's media assets into its
raw directory. Assets already on disk are skipped, so an interrupted run can
simply be restarted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPhase(cmd, func(svc *services, ctx context.Context) error {
				return svc.pipe.Download(ctx)
			})
		},
	}
}

func newSubtitlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subtitles",
		Short: "Fetches and converts every talk's caption tracks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPhase(cmd, func(svc *services, ctx context.Context) error {
				return svc.pipe.Subtitles(ctx)
			})
		},
	}
}

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode",
		Short: "Transcodes downloaded videos into the rendered site tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPhase(cmd, func(svc *services, ctx context.Context) error {
				return svc.pipe.Encode(ctx)
			})
		},
	}
}

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Renders the categorized static site from the snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPhase(cmd, func(svc *services, ctx context.Context) error {
				return svc.pipe.Render(ctx)
			})
		},
	}
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Runs download, subtitles, encode, and render in order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPhase(cmd, func(svc *services, ctx context.Context) error {
				for _, phase := range []func(context.Context) error{
					svc.pipe.Download,
					svc.pipe.Subtitles,
					svc.pipe.Encode,
					svc.pipe.Render,
				} {
					if err := phase(ctx); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
