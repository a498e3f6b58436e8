// Package encode wraps the external video encoder binary.
package encode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

var commandContext = exec.CommandContext

// Client defines video encoding behaviour.
type Client interface {
	Encode(ctx context.Context, inputPath, outputPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary string
	logger *zap.Logger
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(logger *zap.Logger, opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", logger: logger}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Encode converts one input media file into a scaled-down webm. The call
// blocks until the encoder exits. On failure the partial output file is
// removed so a later run does not mistake it for a finished encode.
func (c *CLI) Encode(ctx context.Context, inputPath, outputPath string) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}

	args := []string{
		"-y",
		"-i", inputPath,
		"-codec:v", "libvpx",
		"-quality", "good",
		"-cpu-used", "0",
		"-b:v", "600k",
		"-qmin", "10",
		"-qmax", "42",
		"-maxrate", "500k",
		"-bufsize", "1000k",
		"-threads", "2",
		"-vf", "scale=480:-1",
		"-codec:a", "libvorbis",
		"-b:a", "128k",
		"-f", "webm",
		outputPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if removeErr := os.Remove(outputPath); removeErr != nil && !os.IsNotExist(removeErr) {
			c.logger.Warn("Failed to remove partial encode output",
				zap.String("path", outputPath),
				zap.Error(removeErr),
			)
		}
		return fmt.Errorf("encode %s: %w: %s", inputPath, err, output)
	}
	return nil
}
