// Package piper adapts the piper neural TTS CLI as a pre-loaded speech model.
//
// Synthesis runs piper with --output-raw so the utterance comes back as
// 16-bit little-endian mono PCM at the voice's sample rate. Save encodes a
// buffer into WAV through ffmpeg.
package piper

import (
	"context"
	"encoding/binary"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"voiceforge/internal/logging"
	"voiceforge/internal/pipeline"
	"voiceforge/internal/services"
)

// Voice is one piper voice model.
type Voice struct {
	name       string
	command    string
	ffmpeg     string
	model      string
	sampleRate int
	runner     services.InputRunner
	logger     *slog.Logger
}

// Option customizes a Voice.
type Option func(*Voice)

// WithRunner overrides the command runner (useful for tests).
func WithRunner(runner services.InputRunner) Option {
	return func(v *Voice) {
		if runner != nil {
			v.runner = runner
		}
	}
}

// NewVoice constructs a voice backed by the given onnx model.
func NewVoice(name, command, ffmpeg, model string, sampleRate int, logger *slog.Logger, opts ...Option) *Voice {
	voice := &Voice{
		name:       name,
		command:    strings.TrimSpace(command),
		ffmpeg:     strings.TrimSpace(ffmpeg),
		model:      model,
		sampleRate: sampleRate,
		runner:     services.RunCommandWithInput,
		logger:     logging.NewComponentLogger(logger, "piper").With(logging.String("voice", name)),
	}
	for _, opt := range opts {
		opt(voice)
	}
	if voice.ffmpeg == "" {
		voice.ffmpeg = "ffmpeg"
	}
	return voice
}

// SampleRate returns the voice's output rate in Hz.
func (v *Voice) SampleRate() int {
	return v.sampleRate
}

// Synthesize renders text to PCM samples.
func (v *Voice) Synthesize(ctx context.Context, text string, opts pipeline.SynthesisOptions) (pipeline.AudioBuffer, error) {
	args := []string{"--model", v.model, "--output-raw"}
	if opts.Speaker > 0 {
		args = append(args, "--speaker", strconv.Itoa(opts.Speaker))
	}
	if opts.LengthScale > 0 {
		args = append(args, "--length-scale", strconv.FormatFloat(opts.LengthScale, 'f', -1, 64))
	}
	if opts.NoiseScale > 0 {
		args = append(args, "--noise-scale", strconv.FormatFloat(opts.NoiseScale, 'f', -1, 64))
	}
	raw, err := v.runner(ctx, []byte(text), v.command, args...)
	if err != nil {
		return pipeline.AudioBuffer{}, services.Wrap(services.ErrExternalTool, "tts", "synthesize", v.name, err)
	}
	if len(raw) < 2 {
		return pipeline.AudioBuffer{}, services.Wrap(services.ErrExternalTool, "tts", "synthesize", "piper returned no audio", nil)
	}
	return pipeline.AudioBuffer{Samples: decodePCM(raw), SampleRate: v.sampleRate}, nil
}

// Save writes buf as a uniquely named WAV in dir and returns its path.
func (v *Voice) Save(ctx context.Context, buf pipeline.AudioBuffer, dir string) (string, error) {
	rate := buf.SampleRate
	if rate <= 0 {
		rate = v.sampleRate
	}
	output := filepath.Join(dir, uuid.NewString()+".wav")
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "s16le", "-ar", strconv.Itoa(rate), "-ac", "1",
		"-i", "pipe:0",
		output,
	}
	if _, err := v.runner(ctx, encodePCM(buf.Samples), v.ffmpeg, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "tts", "save", "encode wav", err)
	}
	v.logger.Debug("speech saved", logging.String("output", output), logging.Int("samples", len(buf.Samples)))
	return output, nil
}

func decodePCM(raw []byte) []int16 {
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return samples
}

func encodePCM(samples []int16) []byte {
	raw := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(sample))
	}
	return raw
}
