package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"voiceforge/internal/deps"
	"voiceforge/internal/fileutil"
	"voiceforge/internal/history"
	"voiceforge/internal/pipeline"
)

func newCloneCommand(ctx *commandContext) *cobra.Command {
	var (
		source    string
		text      string
		lang      string
		translate bool
		workDir   string
		useGPU    bool
		output    string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone the voice in a recording onto new text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.log()
			if !cmd.Flags().Changed("gpu") {
				useGPU = cfg.Device.UseGPU
			}

			jobID := uuid.NewString()
			dir := strings.TrimSpace(workDir)
			if dir == "" {
				dir = filepath.Join(cfg.Paths.WorkDir, jobID)
			}
			job := pipeline.CloneJob{
				ID:               jobID,
				Source:           strings.TrimSpace(source),
				Text:             text,
				SourceLanguage:   strings.TrimSpace(lang),
				NeedsTranslation: translate,
				WorkDir:          dir,
				UseGPU:           useGPU,
			}

			entry := history.Entry{
				ID:         jobID,
				Kind:       history.KindClone,
				SourcePath: job.Source,
				Text:       text,
				Language:   job.SourceLanguage,
				CreatedAt:  time.Now(),
			}
			ctx.startJob(cmd.Context(), entry)

			p := buildClonePipeline(cfg, deps.NewGPUProbe(), logger)
			var outcome pipeline.Outcome
			lockErr := withGPULock(cmd.Context(), cfg.GPULockPath(), useGPU, logger, func() error {
				outcome = p.Run(cmd.Context(), job)
				return nil
			})
			if lockErr != nil {
				return lockErr
			}

			entry.FailureCode = outcome.Code
			entry.Message = outcome.Message
			if result, ok := outcome.Result.(pipeline.CloneResult); ok {
				entry.VoiceLabel = result.VoiceLabel
				entry.OutputPath = result.OutputPath
				entry.SynthesisTime = result.SynthesisTime
				entry.Signed = result.Signed
			}
			ctx.finalizeJob(cmd.Context(), entry)

			return finishJob(cmd, outcome, output, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Recording (audio or video) whose voice is cloned")
	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to speak in the cloned voice")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language of the source recording (ISO 639 or BCP 47)")
	cmd.Flags().BoolVar(&translate, "translate", false, "Translate the text into the source language first")
	cmd.Flags().StringVar(&workDir, "workdir", "", "Working directory for intermediate files (default: <work_dir>/<job id>)")
	cmd.Flags().BoolVar(&useGPU, "gpu", false, "Run model stages on the GPU when one is available")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Copy the final audio to this path")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

type jobSummary struct {
	Status        string  `json:"status"`
	Code          int     `json:"code"`
	Message       string  `json:"message,omitempty"`
	JobID         string  `json:"job_id,omitempty"`
	VoiceLabel    string  `json:"voice_label,omitempty"`
	OutputPath    string  `json:"output_path,omitempty"`
	ExportedTo    string  `json:"exported_to,omitempty"`
	SynthesisTime float64 `json:"synthesis_time"`
	SampleRate    int     `json:"sample_rate,omitempty"`
	Duration      float64 `json:"duration,omitempty"`
	Signed        bool    `json:"signed,omitempty"`
	Bytes         int     `json:"bytes"`
}

func summarize(outcome pipeline.Outcome) jobSummary {
	summary := jobSummary{
		Status:  string(outcome.Status),
		Code:    outcome.Code,
		Message: outcome.Message,
	}
	switch result := outcome.Result.(type) {
	case pipeline.CloneResult:
		summary.JobID = result.JobID
		summary.VoiceLabel = result.VoiceLabel
		summary.OutputPath = result.OutputPath
		summary.SynthesisTime = result.SynthesisTime
		summary.Signed = result.Signed
		summary.Bytes = len(result.Audio)
	case pipeline.SynthesisResult:
		summary.JobID = result.JobID
		summary.VoiceLabel = result.VoiceLabel
		summary.OutputPath = result.OutputPath
		summary.SynthesisTime = result.SynthesisTime
		summary.SampleRate = result.SampleRate
		summary.Duration = result.Duration
		summary.Bytes = len(result.Audio)
	}
	return summary
}

// finishJob exports and prints a pipeline outcome. A failed outcome becomes
// an exitError carrying its failure code.
func finishJob(cmd *cobra.Command, outcome pipeline.Outcome, output string, jsonOut bool) error {
	summary := summarize(outcome)
	if outcome.OK() && strings.TrimSpace(output) != "" {
		if err := fileutil.ExportFile(outcome.Result.Path(), output); err != nil {
			return fmt.Errorf("export result: %w", err)
		}
		summary.ExportedTo = output
	}

	if jsonOut {
		if err := writeJSON(cmd, summary); err != nil {
			return err
		}
	} else if outcome.OK() {
		printSummary(cmd.OutOrStdout(), summary)
	}

	if !outcome.OK() {
		return &exitError{code: outcome.Code, message: outcome.Message}
	}
	return nil
}

func printSummary(out io.Writer, s jobSummary) {
	fmt.Fprintf(out, "Job:            %s\n", s.JobID)
	fmt.Fprintf(out, "Voice:          %s\n", s.VoiceLabel)
	fmt.Fprintf(out, "Output:         %s\n", s.OutputPath)
	if s.ExportedTo != "" {
		fmt.Fprintf(out, "Exported to:    %s\n", s.ExportedTo)
	}
	fmt.Fprintf(out, "Synthesis time: %.3fs\n", s.SynthesisTime)
	if s.SampleRate > 0 {
		fmt.Fprintf(out, "Sample rate:    %d Hz\n", s.SampleRate)
		fmt.Fprintf(out, "Duration:       %.3fs\n", s.Duration)
	} else {
		fmt.Fprintf(out, "Signed:         %s\n", yesNo(s.Signed))
	}
	fmt.Fprintf(out, "Size:           %d bytes\n", s.Bytes)
}
