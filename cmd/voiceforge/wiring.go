package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"voiceforge/internal/config"
	"voiceforge/internal/deps"
	"voiceforge/internal/fileutil"
	"voiceforge/internal/fragments"
	"voiceforge/internal/media/extract"
	"voiceforge/internal/media/ffprobe"
	"voiceforge/internal/media/silence"
	"voiceforge/internal/pipeline"
	"voiceforge/internal/preflight"
	"voiceforge/internal/separation"
	"voiceforge/internal/services/llm"
	"voiceforge/internal/services/piper"
	"voiceforge/internal/services/rtvc"
	"voiceforge/internal/services/signer"
	"voiceforge/internal/services/speedmatch"
	"voiceforge/internal/services/unmix"
	"voiceforge/internal/services/voicefixer"
)

// buildClonePipeline wires every clone collaborator from cfg.
func buildClonePipeline(cfg *config.Config, gpu *deps.GPUProbe, logger *slog.Logger) *pipeline.ClonePipeline {
	extractor := extract.New(cfg.Tools.FFmpeg, cfg.Tools.ShowToolOutput, logger)
	separator := separation.NewAdapter(
		unmix.New(cfg.Separation.Command, logger),
		ffprobe.NewProber(cfg.Tools.FFprobe),
		extractor,
		gpu,
		time.Duration(cfg.Separation.SourceWaitSeconds)*time.Second,
		logger,
	)
	merger := fragments.NewMerger(
		silence.NewTrimmer(cfg.Tools.FFmpeg, cfg.Merge.SilenceThresholdDB, cfg.Merge.MinSilenceSeconds),
		fragments.FFmpegConcat{FFmpeg: cfg.Tools.FFmpeg},
		logger,
	)

	cloneDeps := pipeline.CloneDeps{
		Separator: separator,
		Cloner: rtvc.New(cfg.Cloning.Command, rtvc.Models{
			Encoder:     cfg.Cloning.EncoderModel,
			Synthesizer: cfg.Cloning.SynthesizerModel,
			Vocoder:     cfg.Cloning.VocoderModel,
		}, cfg.Cloning.PartName, logger),
		Merger:   merger,
		Enhancer: voicefixer.New(cfg.Enhancement.Command, cfg.Enhancement.FixerModel, cfg.Enhancement.VocoderModel, logger),
		Speed:    speedmatch.New(cfg.Speed.Command, nil),
		GPU:      gpu,
		Setup:    newSetup(cloneRequirements(cfg), cloneModels(cfg), cfg.Paths.ModelDir),
	}
	if cfg.Translation.Enabled {
		client := llm.NewClient(llm.Config{
			APIKey:         cfg.Translation.APIKey,
			BaseURL:        cfg.Translation.BaseURL,
			Model:          cfg.Translation.Model,
			Title:          "voiceforge",
			TimeoutSeconds: cfg.Translation.TimeoutSeconds,
		})
		cloneDeps.Translator = llm.NewTranslator(client, logger)
	}
	if cfg.Signing.Enabled {
		cloneDeps.Signer = signer.New(cfg.Signing.Command, nil)
	}

	return pipeline.NewClonePipeline(cloneDeps, pipeline.CloneSettings{
		PartName:   cfg.Cloning.PartName,
		VoiceLabel: cfg.Cloning.VoiceLabel,
		Separation: separation.Options{
			Target:       cfg.Separation.Target,
			TrimSilence:  cfg.Separation.TrimSilence,
			Resample:     cfg.Separation.Resample,
			ConvertedWAV: cfg.Separation.ConvertedWAV,
		},
	}, logger)
}

// buildRegistry loads one piper voice per configured entry.
func buildRegistry(cfg *config.Config, logger *slog.Logger) pipeline.Registry {
	registry := make(pipeline.Registry, len(cfg.TTS.Voices))
	for _, voice := range cfg.TTS.Voices {
		registry[strings.ToLower(voice.Name)] = piper.NewVoice(voice.Name, cfg.TTS.Command, cfg.Tools.FFmpeg, voice.Model, voice.SampleRate, logger)
	}
	return registry
}

func buildTextToSpeech(cfg *config.Config, logger *slog.Logger) *pipeline.TextToSpeech {
	var models []string
	for _, voice := range cfg.TTS.Voices {
		models = append(models, voice.Model)
	}
	requirements := []deps.Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "Required to encode speech"},
		{Name: "TTS engine", Command: cfg.TTS.Command, Description: "Required for text-to-speech voices"},
	}
	return pipeline.NewTextToSpeech(newSetup(requirements, models, cfg.Paths.ModelDir), logger)
}

func cloneRequirements(cfg *config.Config) []deps.Requirement {
	var requirements []deps.Requirement
	for _, req := range preflight.Requirements(cfg) {
		if req.Name == "TTS engine" {
			continue
		}
		if req.Name == "Signer" && !cfg.Signing.Enabled {
			continue
		}
		requirements = append(requirements, req)
	}
	return requirements
}

func cloneModels(cfg *config.Config) []string {
	return []string{
		cfg.Cloning.EncoderModel,
		cfg.Cloning.SynthesizerModel,
		cfg.Cloning.VocoderModel,
		cfg.Enhancement.FixerModel,
		cfg.Enhancement.VocoderModel,
	}
}

// newSetup verifies required binaries and model artifacts once per process.
func newSetup(requirements []deps.Requirement, models []string, modelDir string) *pipeline.Setup {
	return pipeline.NewSetup(func(context.Context) error {
		if missing, ok := deps.FirstMissing(deps.CheckBinaries(requirements)); ok {
			return fmt.Errorf("%s unavailable: %s", missing.Name, missing.Detail)
		}
		if modelDir != "" {
			if err := os.MkdirAll(modelDir, 0o755); err != nil {
				return fmt.Errorf("create model dir: %w", err)
			}
		}
		for _, model := range models {
			if !fileutil.NonEmpty(model) {
				return fmt.Errorf("model artifact %q missing or empty", model)
			}
		}
		return nil
	})
}
