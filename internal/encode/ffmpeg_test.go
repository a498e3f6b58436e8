package encode

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubCommand replaces the encoder subprocess with a shell one-liner and
// restores the real factory afterwards.
func stubCommand(t *testing.T, script string) {
	t.Helper()
	orig := commandContext
	commandContext = func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", script)
	}
	t.Cleanup(func() { commandContext = orig })
}

func TestEncodeValidatesPaths(t *testing.T) {
	cli := NewCLI(zap.NewNop())

	assert.Error(t, cli.Encode(context.Background(), "", "out.webm"))
	assert.Error(t, cli.Encode(context.Background(), "in.mp4", ""))
}

func TestEncodeSuccess(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "video.webm")
	stubCommand(t, "printf encoded > "+out)

	cli := NewCLI(zap.NewNop())
	require.NoError(t, cli.Encode(context.Background(), "in.mp4", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "encoded", string(data))
}

// A failed encode surfaces the exit status and removes the partial output
// so the next run retries it.
func TestEncodeFailureRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "video.webm")
	stubCommand(t, "printf partial > "+out+"; exit 1")

	cli := NewCLI(zap.NewNop())
	err := cli.Encode(context.Background(), "in.mp4", out)
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithBinary(t *testing.T) {
	cli := NewCLI(zap.NewNop(), WithBinary("ffmpeg-static"))
	assert.Equal(t, "ffmpeg-static", cli.binary)

	cli = NewCLI(zap.NewNop(), WithBinary(""))
	assert.Equal(t, "ffmpeg", cli.binary)
}
