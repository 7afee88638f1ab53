package main

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"voiceforge/internal/history"
	"voiceforge/internal/pipeline"
)

func newTTSCommand(ctx *commandContext) *cobra.Command {
	var (
		text    string
		voice   string
		workDir string
		output  string
		jsonOut bool
		opts    pipeline.SynthesisOptions
	)

	cmd := &cobra.Command{
		Use:   "tts",
		Short: "Synthesize text with a pre-loaded voice",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.log()

			jobID := uuid.NewString()
			dir := strings.TrimSpace(workDir)
			if dir == "" {
				dir = filepath.Join(cfg.Paths.WorkDir, jobID)
			}
			job := pipeline.SynthesisJob{
				ID:       jobID,
				Text:     text,
				ModelKey: strings.TrimSpace(voice),
				WorkDir:  dir,
				Options:  opts,
			}
			entry := history.Entry{
				ID:         jobID,
				Kind:       history.KindTTS,
				VoiceLabel: job.ModelKey,
				Text:       text,
				CreatedAt:  time.Now(),
			}
			ctx.startJob(cmd.Context(), entry)

			outcome := buildTextToSpeech(cfg, logger).Run(cmd.Context(), job, buildRegistry(cfg, logger))

			entry.FailureCode = outcome.Code
			entry.Message = outcome.Message
			if result, ok := outcome.Result.(pipeline.SynthesisResult); ok {
				entry.OutputPath = result.OutputPath
				entry.SynthesisTime = result.SynthesisTime
				entry.Duration = result.Duration
			}
			ctx.finalizeJob(cmd.Context(), entry)

			return finishJob(cmd, outcome, output, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to synthesize")
	cmd.Flags().StringVarP(&voice, "voice", "v", "", "Configured voice name")
	cmd.Flags().StringVar(&workDir, "workdir", "", "Working directory for the output (default: <work_dir>/<job id>)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Copy the final audio to this path")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().IntVar(&opts.Speaker, "speaker", 0, "Speaker id for multi-speaker voices")
	cmd.Flags().Float64Var(&opts.LengthScale, "length-scale", 0, "Phoneme length scale (slower > 1 > faster)")
	cmd.Flags().Float64Var(&opts.NoiseScale, "noise-scale", 0, "Generator noise scale")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("voice")
	return cmd
}
