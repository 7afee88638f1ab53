// Package unmix adapts the source separation network CLI.
//
// The tool exposes two subcommands. "separate" isolates one stem from a
// recording and "trim" removes silence from a separated stem. Both print the
// path of the file they wrote as the last line of stdout.
package unmix

import (
	"context"
	"log/slog"
	"strings"

	"voiceforge/internal/device"
	"voiceforge/internal/logging"
	"voiceforge/internal/services"
)

// Request describes one separation run.
type Request struct {
	Source       string
	OutputDir    string
	Target       string
	Device       device.Device
	ConvertedWAV bool
	Resample     bool
}

// Client invokes the separation CLI.
type Client struct {
	command string
	runner  services.CommandRunner
	logger  *slog.Logger
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

// New constructs a client for the given executable.
func New(command string, logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		command: strings.TrimSpace(command),
		runner:  services.RunCommand,
		logger:  logging.NewComponentLogger(logger, "unmix"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// SeparateAudio isolates req.Target from req.Source and returns the stem path.
func (c *Client) SeparateAudio(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Source) == "" {
		return "", services.Wrap(services.ErrValidation, "separation", "args", "source path is required", nil)
	}
	output, err := c.runner(ctx, c.command, buildSeparateArgs(req)...)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "separation", "separate", "separation network failed", err)
	}
	path := services.ResolveOutputPath(services.LastLine(output), req.OutputDir)
	if path == "" {
		return "", services.Wrap(services.ErrExternalTool, "separation", "separate", "separation network reported no output", nil)
	}
	c.logger.Debug("stem separated",
		logging.String("source", req.Source),
		logging.String("target", req.Target),
		logging.String("device", req.Device.String()),
		logging.String("output", path),
	)
	return path, nil
}

// TrimSilence removes silence from path, writing into outputDir.
func (c *Client) TrimSilence(ctx context.Context, path, outputDir string) (string, error) {
	output, err := c.runner(ctx, c.command, "trim", "--input", path, "--output-dir", outputDir)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "separation", "trim", "silence trim failed", err)
	}
	trimmed := services.ResolveOutputPath(services.LastLine(output), outputDir)
	if trimmed == "" {
		return "", services.Wrap(services.ErrExternalTool, "separation", "trim", "trim reported no output", nil)
	}
	return trimmed, nil
}

func buildSeparateArgs(req Request) []string {
	target := strings.TrimSpace(req.Target)
	if target == "" {
		target = "vocals"
	}
	dev := req.Device
	if dev == "" {
		dev = device.CPU
	}
	args := []string{
		"separate",
		"--input", req.Source,
		"--output-dir", req.OutputDir,
		"--target", target,
		"--device", dev.String(),
	}
	if req.ConvertedWAV {
		args = append(args, "--converted-wav")
	}
	if req.Resample {
		args = append(args, "--resample")
	}
	return args
}
