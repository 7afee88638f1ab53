// Package speedmatch adapts the re-timing CLI that stretches synthesized
// speech to the pacing of a reference recording.
package speedmatch

import (
	"context"
	"path/filepath"
	"strings"

	"voiceforge/internal/services"
)

// Client invokes the speed-matching CLI.
type Client struct {
	command string
	runner  services.CommandRunner
}

// New constructs a client. A nil runner uses services.RunCommand.
func New(command string, runner services.CommandRunner) *Client {
	if runner == nil {
		runner = services.RunCommand
	}
	return &Client{command: strings.TrimSpace(command), runner: runner}
}

// ProcessAndSave re-times target to match reference and returns the path of
// the re-timed file.
func (c *Client) ProcessAndSave(ctx context.Context, reference, target string) (string, error) {
	output, err := c.runner(ctx, c.command, "--reference", reference, "--target", target)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "speed", "retime", "speed matching failed", err)
	}
	path := services.ResolveOutputPath(services.LastLine(output), filepath.Dir(target))
	if path == "" {
		return "", services.Wrap(services.ErrExternalTool, "speed", "retime", "speed matcher reported no output", nil)
	}
	return path, nil
}
