// Package extract pulls the audio track out of a video container so that
// audio-only stages can consume it.
package extract

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"voiceforge/internal/logging"
	"voiceforge/internal/services"
)

// Extractor runs ffmpeg to transcode a video's audio stream into a WAV file.
type Extractor struct {
	FFmpeg string
	// Runner executes ffmpeg. Only the file ffmpeg leaves behind is
	// inspected, so quiet and streaming runners are interchangeable.
	Runner services.CommandRunner

	logger  *slog.Logger
	newName func() string
}

// New constructs an Extractor for the given ffmpeg binary. With visible set,
// ffmpeg output streams to the terminal; otherwise it is discarded.
func New(ffmpeg string, visible bool, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := services.RunCommand
	if visible {
		runner = services.StreamingRunner(os.Stdout, os.Stderr)
	}
	return &Extractor{
		FFmpeg:  ffmpeg,
		Runner:  runner,
		logger:  logging.NewComponentLogger(logger, "extractor"),
		newName: uniqueWAV,
	}
}

func uniqueWAV() string { return uuid.NewString() + ".wav" }

// Extract writes the audio track of videoPath into outputDir under a unique
// name and returns that file name (not the full path). ErrNoAudio is
// returned when ffmpeg fails or leaves an absent or empty file behind.
func (e *Extractor) Extract(ctx context.Context, videoPath, outputDir string) (string, error) {
	binary := strings.TrimSpace(e.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	runner := e.Runner
	if runner == nil {
		runner = services.RunCommand
	}
	newName := e.newName
	if newName == nil {
		newName = uniqueWAV
	}
	logger := e.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	name := newName()
	target := filepath.Join(outputDir, name)

	_, runErr := runner(ctx, binary, "-i", videoPath, "-q:a", "0", "-map", "a", target, "-y")

	info, statErr := os.Stat(target)
	if runErr != nil || statErr != nil || info.Size() == 0 {
		cause := runErr
		if cause == nil {
			cause = statErr
		}
		logging.WarnWithContext(logger, "audio extraction produced no file", "extract_empty",
			logging.String("video", videoPath),
			logging.String(logging.FieldErrorHint, "check that the input has an audio stream"),
			logging.String(logging.FieldImpact, "job aborted"),
			logging.Error(cause),
		)
		_ = os.Remove(target)
		return "", services.Wrap(services.ErrNoAudio, "extract", "ffmpeg", "no audio extracted from "+filepath.Base(videoPath), cause)
	}

	logger.Debug("audio extracted",
		logging.String("video", videoPath),
		logging.String("output", target),
		logging.Int64("size_bytes", info.Size()),
	)
	return name, nil
}
