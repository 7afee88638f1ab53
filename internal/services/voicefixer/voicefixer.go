// Package voicefixer adapts the speech restoration CLI used to enhance
// merged synthetic speech.
package voicefixer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"voiceforge/internal/device"
	"voiceforge/internal/fileutil"
	"voiceforge/internal/logging"
	"voiceforge/internal/services"
)

// Client wraps the restoration engine. It is constructed with the two model
// artifacts the engine needs: the restoration (fixer) checkpoint and the
// vocoder checkpoint.
type Client struct {
	command      string
	fixerModel   string
	vocoderModel string
	runner       services.CommandRunner
	logger       *slog.Logger
	newName      func() string
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

// New constructs a restoration client.
func New(command, fixerModel, vocoderModel string, logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		command:      strings.TrimSpace(command),
		fixerModel:   fixerModel,
		vocoderModel: vocoderModel,
		runner:       services.RunCommand,
		logger:       logging.NewComponentLogger(logger, "voicefixer"),
		newName:      func() string { return uuid.NewString() + ".wav" },
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Restore enhances inputPath into outputPath.
func (c *Client) Restore(ctx context.Context, inputPath, outputPath string, useGPU bool) error {
	args := []string{
		"--input", inputPath,
		"--output", outputPath,
		"--fixer-model", c.fixerModel,
		"--vocoder-model", c.vocoderModel,
	}
	if useGPU {
		args = append(args, "--cuda")
	}
	if _, err := c.runner(ctx, c.command, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "enhancement", "restore", "speech restoration failed", err)
	}
	if !fileutil.NonEmpty(outputPath) {
		return services.Wrap(services.ErrExternalTool, "enhancement", "restore", "restoration produced no audio", nil)
	}
	return nil
}

// Enhance restores inputPath into a uniquely named WAV inside outputDir and
// returns its path.
func (c *Client) Enhance(ctx context.Context, inputPath, outputDir string, dev device.Device) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "enhancement", "input", inputPath, err)
		}
		return "", services.Wrap(services.ErrTransient, "enhancement", "input", inputPath, err)
	}
	output := filepath.Join(outputDir, c.newName())
	started := time.Now()
	if err := c.Restore(ctx, inputPath, output, dev.UseCUDA()); err != nil {
		return "", err
	}
	c.logger.Debug("speech restored",
		logging.String("input", inputPath),
		logging.String("output", output),
		logging.String("device", dev.String()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return output, nil
}
