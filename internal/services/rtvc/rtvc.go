// Package rtvc adapts the real-time voice cloning CLI.
//
// The engine loads an encoder, synthesizer and vocoder, embeds the reference
// voice and writes the synthesized utterance into the output directory as
// numbered fragments named <part-name><ordinal>.wav. It reports nothing else
// the pipeline depends on.
package rtvc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"voiceforge/internal/device"
	"voiceforge/internal/logging"
	"voiceforge/internal/services"
)

// Models are the three engine components loaded for every run.
type Models struct {
	Encoder     string
	Synthesizer string
	Vocoder     string
}

// Client invokes the cloning CLI.
type Client struct {
	command  string
	models   Models
	partName string
	runner   services.CommandRunner
	logger   *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithRunner overrides the command runner (useful for tests).
func WithRunner(runner services.CommandRunner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// New constructs a client. partName is the fragment file prefix.
func New(command string, models Models, partName string, logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		command:  strings.TrimSpace(command),
		models:   models,
		partName: partName,
		runner:   services.RunCommand,
		logger:   logging.NewComponentLogger(logger, "rtvc"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// PartName returns the fragment prefix the engine writes.
func (c *Client) PartName() string {
	return c.partName
}

// CloneVoice synthesizes text in the voice of voiceRef, leaving fragments in
// outputDir.
func (c *Client) CloneVoice(ctx context.Context, voiceRef, text, outputDir string, dev device.Device) error {
	if strings.TrimSpace(voiceRef) == "" || strings.TrimSpace(text) == "" {
		return services.Wrap(services.ErrValidation, "cloning", "args", "voice reference and text are required", nil)
	}
	started := time.Now()
	if _, err := c.runner(ctx, c.command, c.buildArgs(voiceRef, text, outputDir, dev)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "cloning", "synthesize", "voice cloning failed", err)
	}
	c.logger.Debug("voice cloned",
		logging.String("voice", voiceRef),
		logging.String("device", dev.String()),
		logging.Int("text_chars", len([]rune(text))),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (c *Client) buildArgs(voiceRef, text, outputDir string, dev device.Device) []string {
	if dev == "" {
		dev = device.CPU
	}
	return []string{
		"--voice", voiceRef,
		"--text", text,
		"--encoder", c.models.Encoder,
		"--synthesizer", c.models.Synthesizer,
		"--vocoder", c.models.Vocoder,
		"--output-dir", outputDir,
		"--part-name", c.partName,
		"--device", dev.String(),
	}
}
