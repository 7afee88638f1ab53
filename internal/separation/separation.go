// Package separation resolves a clean voice track from a source recording.
//
// The adapter waits briefly for a source that an upstream writer has not
// finished producing, pulls the audio out of video containers, selects the
// inference device and delegates to the separation network. Its output may
// optionally be silence-trimmed.
package separation

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"voiceforge/internal/device"
	"voiceforge/internal/fileutil"
	"voiceforge/internal/logging"
	"voiceforge/internal/media/ffprobe"
	"voiceforge/internal/services"
	"voiceforge/internal/services/unmix"
)

// Kind overrides container detection for a source.
type Kind int

const (
	// KindAuto probes the source to decide whether it is video.
	KindAuto Kind = iota
	KindAudio
	KindVideo
)

// Options are the per-call separation settings.
type Options struct {
	Target       string
	UseGPU       bool
	TrimSilence  bool
	Resample     bool
	ConvertedWAV bool
	Kind         Kind
}

// Network is the separation engine.
type Network interface {
	SeparateAudio(ctx context.Context, req unmix.Request) (string, error)
	TrimSilence(ctx context.Context, path, outputDir string) (string, error)
}

// Prober inspects media containers.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// AudioExtractor pulls an audio track out of a video into outputDir and
// returns the new file's name.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, outputDir string) (string, error)
}

// Adapter implements voice separation over the injected collaborators.
type Adapter struct {
	network   Network
	prober    Prober
	extractor AudioExtractor
	gpu       device.Probe
	wait      time.Duration
	poll      time.Duration
	logger    *slog.Logger
}

// NewAdapter constructs an Adapter. sourceWait bounds how long a missing
// source is polled for before separation proceeds regardless.
func NewAdapter(network Network, prober Prober, extractor AudioExtractor, gpu device.Probe, sourceWait time.Duration, logger *slog.Logger) *Adapter {
	return &Adapter{
		network:   network,
		prober:    prober,
		extractor: extractor,
		gpu:       gpu,
		wait:      sourceWait,
		poll:      fileutil.DefaultPollInterval,
		logger:    logging.NewComponentLogger(logger, "separation"),
	}
}

// Separate isolates the target voice in source and returns its path.
func (a *Adapter) Separate(ctx context.Context, source, outputDir string, opts Options) (string, error) {
	if !fileutil.WaitForFile(ctx, source, a.wait, a.poll) {
		logging.WarnWithContext(a.logger, "source not present after wait", "source_missing",
			logging.String("source", source),
			logging.Duration("waited", a.wait),
			logging.String(logging.FieldImpact, "separation will likely fail"),
			logging.String(logging.FieldErrorHint, "ensure the upstream writer finished before starting the job"),
		)
	}

	input := source
	if a.isVideo(ctx, source, opts.Kind) {
		if a.extractor == nil {
			return "", services.Wrap(services.ErrConfiguration, "separation", "extract", "video input without an extractor", nil)
		}
		name, err := a.extractor.Extract(ctx, source, outputDir)
		if err != nil {
			return "", err
		}
		input = filepath.Join(outputDir, name)
		a.logger.Info("audio extracted from video", logging.String("source", source), logging.String("audio", input))
	}

	dev := device.Select(ctx, opts.UseGPU, a.gpu)
	voice, err := a.network.SeparateAudio(ctx, unmix.Request{
		Source:       input,
		OutputDir:    outputDir,
		Target:       opts.Target,
		Device:       dev,
		ConvertedWAV: opts.ConvertedWAV,
		Resample:     opts.Resample,
	})
	if err != nil {
		return "", err
	}
	if opts.TrimSilence {
		if voice, err = a.network.TrimSilence(ctx, voice, outputDir); err != nil {
			return "", err
		}
	}

	a.logger.Info("voice separated",
		logging.String("source", source),
		logging.String("voice", voice),
		logging.String("device", dev.String()),
		logging.Bool("trimmed", opts.TrimSilence),
	)
	return voice, nil
}

func (a *Adapter) isVideo(ctx context.Context, source string, kind Kind) bool {
	switch kind {
	case KindAudio:
		return false
	case KindVideo:
		return true
	}
	if a.prober == nil {
		return false
	}
	result, err := a.prober.Inspect(ctx, source)
	if err != nil {
		a.logger.Debug("probe failed; treating source as audio", logging.String("source", source), logging.Error(err))
		return false
	}
	return result.IsVideo()
}
