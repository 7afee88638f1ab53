package fragments

import (
	"context"
	"os/exec"
	"strings"
)

// FFmpegConcat joins files with ffmpeg's concat demuxer without re-encoding.
type FFmpegConcat struct {
	FFmpeg string
}

// Concat runs ffmpeg against manifest with its output discarded.
func (c FFmpegConcat) Concat(ctx context.Context, manifest, output string) error {
	binary := strings.TrimSpace(c.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, //nolint:gosec
		"-hide_banner", "-nostdin", "-y",
		"-f", "concat", "-safe", "0",
		"-i", manifest,
		"-c", "copy",
		output,
	)
	return cmd.Run()
}
