package pipeline

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"voiceforge/internal/logging"
	"voiceforge/internal/services"
)

// SpeechModel is a pre-loaded text-to-speech voice.
type SpeechModel interface {
	Synthesize(ctx context.Context, text string, opts SynthesisOptions) (AudioBuffer, error)
	Save(ctx context.Context, buf AudioBuffer, dir string) (string, error)
	SampleRate() int
}

// Registry maps model keys to loaded voices. The caller owns and populates it.
type Registry map[string]SpeechModel

// Lookup finds key, falling back to a case-insensitive match. An exact key
// always wins; a key that folds onto more than one entry is not found.
func (r Registry) Lookup(key string) (SpeechModel, bool) {
	key = strings.TrimSpace(key)
	if model, ok := r[key]; ok {
		return model, true
	}
	var (
		found   SpeechModel
		matches int
	)
	for name, model := range r {
		if strings.EqualFold(name, key) {
			found = model
			matches++
		}
	}
	if matches != 1 {
		return nil, false
	}
	return found, true
}

// TextToSpeech renders text with a single registry voice.
type TextToSpeech struct {
	setup  *Setup
	logger *slog.Logger
}

// NewTextToSpeech constructs the pipeline. setup may be nil.
func NewTextToSpeech(setup *Setup, logger *slog.Logger) *TextToSpeech {
	return &TextToSpeech{setup: setup, logger: logging.NewComponentLogger(logger, "tts_pipeline")}
}

// SynthesisJob is one invocation of the TTS pipeline.
type SynthesisJob struct {
	ID       string
	Text     string
	ModelKey string
	WorkDir  string
	Options  SynthesisOptions
}

// Run synthesizes job.Text with the registry model named job.ModelKey. It
// never panics.
func (t *TextToSpeech) Run(ctx context.Context, job SynthesisJob, registry Registry) (outcome Outcome) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	ctx = services.WithJobKind(services.WithJobID(ctx, job.ID), "tts")
	logger := logging.WithContext(ctx, t.logger)
	defer func() {
		if recovered := recover(); recovered != nil {
			logging.ErrorWithContext(logger, "tts pipeline panicked", "pipeline_panic", logging.Any("panic", recovered))
			outcome = panicked(recovered)
		}
	}()

	result, err := t.run(services.WithStage(ctx, StageSynthesis), job, registry)
	if err != nil {
		logging.ErrorWithContext(logger, "tts job failed", "job_failure",
			logging.Int("failure_code", services.FailureCode(err)),
			logging.Error(err),
		)
		return failed(err)
	}
	logger.Info("tts job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("voice", result.VoiceLabel),
		logging.Seconds("duration_s", result.Duration),
		logging.Seconds("synthesis_time_s", result.SynthesisTime),
	)
	return succeeded(result)
}

func (t *TextToSpeech) run(ctx context.Context, job SynthesisJob, registry Registry) (SynthesisResult, error) {
	if strings.TrimSpace(job.Text) == "" {
		return SynthesisResult{}, services.Wrap(services.ErrValidation, "job", "validate", "text is required", nil)
	}
	if strings.TrimSpace(job.WorkDir) == "" {
		return SynthesisResult{}, services.Wrap(services.ErrValidation, "job", "validate", "working directory is required", nil)
	}
	model, ok := registry.Lookup(job.ModelKey)
	if !ok || model == nil {
		return SynthesisResult{}, services.Wrap(services.ErrNotFound, StageSynthesis, "lookup", "unknown voice "+job.ModelKey, nil)
	}
	if err := t.setup.Ensure(ctx); err != nil {
		return SynthesisResult{}, services.Wrap(services.ErrConfiguration, "setup", "bootstrap", "resource setup failed", err)
	}
	if err := os.MkdirAll(job.WorkDir, 0o755); err != nil {
		return SynthesisResult{}, services.Wrap(services.ErrConfiguration, "setup", "workdir", job.WorkDir, err)
	}

	started := time.Now()
	buf, err := model.Synthesize(ctx, job.Text, job.Options)
	elapsed := time.Since(started)
	if err != nil {
		return SynthesisResult{}, err
	}
	if buf.SampleRate <= 0 {
		buf.SampleRate = model.SampleRate()
	}
	path, err := model.Save(ctx, buf, job.WorkDir)
	if err != nil {
		return SynthesisResult{}, err
	}
	audio, err := os.ReadFile(path)
	if err != nil {
		return SynthesisResult{}, services.Wrap(services.ErrNotFound, "result", "read", path, err)
	}

	return SynthesisResult{
		JobID:         job.ID,
		VoiceLabel:    job.ModelKey,
		SampleRate:    buf.SampleRate,
		Duration:      Round3(buf.Duration()),
		SynthesisTime: Round3(elapsed.Seconds()),
		OutputPath:    path,
		Audio:         audio,
	}, nil
}
