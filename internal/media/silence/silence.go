// Package silence trims leading and trailing silence from audio files with
// ffmpeg's silenceremove filter.
package silence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"voiceforge/internal/services"
)

// Trimmer removes silence below ThresholdDB from both ends of a file.
type Trimmer struct {
	FFmpeg      string
	ThresholdDB float64
	MinSilence  float64
	Runner      services.CommandRunner
}

// NewTrimmer constructs a Trimmer with the given threshold and minimum
// silence duration in seconds.
func NewTrimmer(ffmpeg string, thresholdDB, minSilence float64) *Trimmer {
	return &Trimmer{FFmpeg: ffmpeg, ThresholdDB: thresholdDB, MinSilence: minSilence}
}

// Trim writes a trimmed copy of input to output and returns output.
func (t *Trimmer) Trim(ctx context.Context, input, output string) (string, error) {
	if strings.TrimSpace(input) == "" || strings.TrimSpace(output) == "" {
		return "", services.Wrap(services.ErrValidation, "trim", "args", "input and output paths are required", nil)
	}
	binary := strings.TrimSpace(t.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	runner := t.Runner
	if runner == nil {
		runner = services.RunCommand
	}
	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y", "-i", input, "-af", t.Filter(), output}
	if _, err := runner(ctx, binary, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "trim", "ffmpeg", "silence trim failed", err)
	}
	if _, err := os.Stat(output); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", services.Wrap(services.ErrExternalTool, "trim", "ffmpeg", "trimmed file missing", err)
		}
		return "", fmt.Errorf("stat trimmed file: %w", err)
	}
	return output, nil
}

// Filter returns the audio filter chain. silenceremove only strips from the
// start, so the signal is reversed to trim the tail.
func (t *Trimmer) Filter() string {
	threshold := t.ThresholdDB
	if threshold >= 0 {
		threshold = -50
	}
	minSilence := t.MinSilence
	if minSilence <= 0 {
		minSilence = 0.05
	}
	remove := "silenceremove=start_periods=1:start_threshold=" +
		strconv.FormatFloat(threshold, 'f', -1, 64) + "dB:start_silence=" +
		strconv.FormatFloat(minSilence, 'f', -1, 64)
	return strings.Join([]string{remove, "areverse", remove, "areverse"}, ",")
}
