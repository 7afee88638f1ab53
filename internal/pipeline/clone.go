package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"voiceforge/internal/device"
	"voiceforge/internal/fileutil"
	"voiceforge/internal/logging"
	"voiceforge/internal/separation"
	"voiceforge/internal/services"
	"voiceforge/internal/stage"
)

// Stage names, in execution order.
const (
	StageTranslation = "translation"
	StageSeparation  = "separation"
	StageCloning     = "cloning"
	StageMerge       = "merge"
	StageEnhancement = "enhancement"
	StageSpeed       = "speed"
	StageSigning     = "signing"
	StageSynthesis   = "synthesis"
)

// Translator renders text in the given language.
type Translator interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

// VoiceSeparator isolates the speaker's voice from a recording.
type VoiceSeparator interface {
	Separate(ctx context.Context, source, outputDir string, opts separation.Options) (string, error)
}

// Cloner writes numbered speech fragments in the voice of voiceRef.
type Cloner interface {
	CloneVoice(ctx context.Context, voiceRef, text, outputDir string, dev device.Device) error
}

// FragmentMerger joins fragments with the given prefix into outputName.
// An empty path means nothing was merged.
type FragmentMerger interface {
	Merge(ctx context.Context, dir, prefix, outputName string) (string, error)
}

// Enhancer restores speech quality, writing a new file into outputDir.
type Enhancer interface {
	Enhance(ctx context.Context, input, outputDir string, dev device.Device) (string, error)
}

// SpeedMatcher re-times target to the pacing of reference.
type SpeedMatcher interface {
	ProcessAndSave(ctx context.Context, reference, target string) (string, error)
}

// Signer signs path into dir. An empty path means the file stays unsigned.
type Signer interface {
	Sign(ctx context.Context, path, dir string) (string, error)
}

// CloneDeps are the collaborators of ClonePipeline. Translator and Signer
// may be nil.
type CloneDeps struct {
	Translator Translator
	Separator  VoiceSeparator
	Cloner     Cloner
	Merger     FragmentMerger
	Enhancer   Enhancer
	Speed      SpeedMatcher
	Signer     Signer
	GPU        device.Probe
	Setup      *Setup
}

// CloneSettings are fixed per pipeline instance.
type CloneSettings struct {
	PartName   string
	VoiceLabel string
	Separation separation.Options
}

// CloneJob is one invocation of the clone pipeline.
type CloneJob struct {
	ID               string
	Source           string
	Text             string
	SourceLanguage   string
	NeedsTranslation bool
	WorkDir          string
	UseGPU           bool
}

// ClonePipeline translates, clones and post-processes speech.
type ClonePipeline struct {
	deps     CloneDeps
	settings CloneSettings
	logger   *slog.Logger
}

// NewClonePipeline constructs a ClonePipeline.
func NewClonePipeline(deps CloneDeps, settings CloneSettings, logger *slog.Logger) *ClonePipeline {
	if settings.PartName == "" {
		settings.PartName = "rtvc_output_part"
	}
	if settings.VoiceLabel == "" {
		settings.VoiceLabel = "Cloning voice"
	}
	return &ClonePipeline{
		deps:     deps,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "clone_pipeline"),
	}
}

// Run executes job and reports the outcome. It never panics.
func (p *ClonePipeline) Run(ctx context.Context, job CloneJob) (outcome Outcome) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	ctx = services.WithJobKind(services.WithJobID(ctx, job.ID), "clone")
	logger := logging.WithContext(ctx, p.logger)
	defer func() {
		if recovered := recover(); recovered != nil {
			logging.ErrorWithContext(logger, "clone pipeline panicked", "pipeline_panic", logging.Any("panic", recovered))
			outcome = panicked(recovered)
		}
	}()

	result, err := p.run(ctx, logger, job)
	if err != nil {
		logging.ErrorWithContext(logger, "clone job failed", "job_failure",
			logging.Int("failure_code", services.FailureCode(err)),
			logging.Error(err),
		)
		return failed(err)
	}
	logger.Info("clone job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("output", result.OutputPath),
		logging.Seconds("synthesis_time_s", result.SynthesisTime),
		logging.Bool("signed", result.Signed),
	)
	return succeeded(result)
}

func (p *ClonePipeline) run(ctx context.Context, logger *slog.Logger, job CloneJob) (CloneResult, error) {
	if err := p.validate(job); err != nil {
		return CloneResult{}, err
	}
	if err := p.deps.Setup.Ensure(ctx); err != nil {
		return CloneResult{}, services.Wrap(services.ErrConfiguration, "setup", "bootstrap", "resource setup failed", err)
	}
	if err := os.MkdirAll(job.WorkDir, 0o755); err != nil {
		return CloneResult{}, services.Wrap(services.ErrConfiguration, "setup", "workdir", job.WorkDir, err)
	}

	runner := stage.NewRunner(logger)
	text := job.Text
	if job.NeedsTranslation {
		err := runner.Run(ctx, StageTranslation, func(ctx context.Context) error {
			translated, err := p.deps.Translator.Translate(ctx, text, job.SourceLanguage)
			text = translated
			return err
		})
		if err != nil {
			return CloneResult{}, err
		}
	}

	sepOpts := p.settings.Separation
	sepOpts.UseGPU = job.UseGPU
	dev := device.Select(ctx, job.UseGPU, p.deps.GPU)

	var voice, merged, enhanced, final string
	steps := []struct {
		name string
		fn   stage.Func
	}{
		{StageSeparation, func(ctx context.Context) (err error) {
			voice, err = p.deps.Separator.Separate(ctx, job.Source, job.WorkDir, sepOpts)
			return err
		}},
		{StageCloning, func(ctx context.Context) error {
			return p.deps.Cloner.CloneVoice(ctx, voice, text, job.WorkDir, dev)
		}},
		{StageMerge, func(ctx context.Context) (err error) {
			merged, err = p.deps.Merger.Merge(ctx, job.WorkDir, p.settings.PartName, uuid.NewString()+".wav")
			if err != nil {
				return err
			}
			if merged == "" {
				return services.Wrap(services.ErrNotFound, StageMerge, "fragments", "cloning produced no fragments", nil)
			}
			if !fileutil.NonEmpty(merged) {
				return services.Wrap(services.ErrExternalTool, StageMerge, "concat", "concatenation produced no audio", nil)
			}
			return nil
		}},
		{StageEnhancement, func(ctx context.Context) (err error) {
			enhanced, err = p.deps.Enhancer.Enhance(ctx, merged, job.WorkDir, dev)
			return err
		}},
		{StageSpeed, func(ctx context.Context) (err error) {
			final, err = p.deps.Speed.ProcessAndSave(ctx, voice, enhanced)
			return err
		}},
	}
	for _, step := range steps {
		if err := runner.Run(ctx, step.name, step.fn); err != nil {
			return CloneResult{}, err
		}
	}
	synthesisTime := runner.Elapsed(StageSeparation, StageCloning, StageMerge, StageEnhancement, StageSpeed)

	signed := false
	if path := p.sign(ctx, logger, final, job.WorkDir); path != "" {
		final, signed = path, true
	}

	audio, err := os.ReadFile(final)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CloneResult{}, services.Wrap(services.ErrNotFound, "result", "read", final, err)
		}
		return CloneResult{}, services.Wrap(services.ErrTransient, "result", "read", final, err)
	}

	logger.Debug("stage timings", logging.String("timings", runner.Summary()))
	return CloneResult{
		JobID:         job.ID,
		VoiceLabel:    p.settings.VoiceLabel,
		SynthesisTime: Round3(synthesisTime.Seconds()),
		OutputPath:    final,
		Audio:         audio,
		Signed:        signed,
	}, nil
}

// sign returns the signed file path, or "" when the output stays unsigned.
func (p *ClonePipeline) sign(ctx context.Context, logger *slog.Logger, path, dir string) (signedPath string) {
	if p.deps.Signer == nil {
		return ""
	}
	started := time.Now()
	defer func() {
		if recovered := recover(); recovered != nil {
			logging.WarnWithContext(logger, "signer panicked; output left unsigned", "signing_failed",
				logging.Any("panic", recovered),
				logging.String(logging.FieldImpact, "output returned unsigned"),
			)
			signedPath = ""
		}
	}()
	signed, err := p.deps.Signer.Sign(services.WithStage(ctx, StageSigning), path, dir)
	if err != nil {
		logging.WarnWithContext(logger, "signing failed; output left unsigned", "signing_failed",
			logging.String(logging.FieldImpact, "output returned unsigned"),
			logging.String(logging.FieldErrorHint, "check the signer configuration"),
			logging.Error(err),
		)
		return ""
	}
	if signed == "" || !fileutil.NonEmpty(signed) {
		logger.Info("output left unsigned", logging.String(logging.FieldEventType, "signing_skipped"))
		return ""
	}
	logger.Debug("output signed", logging.String("signed", signed), logging.Duration("elapsed", time.Since(started)))
	return signed
}

func (p *ClonePipeline) validate(job CloneJob) error {
	switch {
	case strings.TrimSpace(job.Source) == "":
		return services.Wrap(services.ErrValidation, "job", "validate", "source is required", nil)
	case strings.TrimSpace(job.Text) == "":
		return services.Wrap(services.ErrValidation, "job", "validate", "target text is required", nil)
	case strings.TrimSpace(job.WorkDir) == "":
		return services.Wrap(services.ErrValidation, "job", "validate", "working directory is required", nil)
	case job.NeedsTranslation && strings.TrimSpace(job.SourceLanguage) == "":
		return services.Wrap(services.ErrValidation, "job", "validate", "source language is required for translation", nil)
	case job.NeedsTranslation && p.deps.Translator == nil:
		return services.Wrap(services.ErrConfiguration, "job", "validate", "translation requested but no translator is configured", nil)
	}
	for name, dep := range map[string]any{
		StageSeparation:  p.deps.Separator,
		StageCloning:     p.deps.Cloner,
		StageMerge:       p.deps.Merger,
		StageEnhancement: p.deps.Enhancer,
		StageSpeed:       p.deps.Speed,
	} {
		if dep == nil {
			return services.Wrap(services.ErrConfiguration, name, "init", "collaborator not configured", nil)
		}
	}
	return nil
}
