// Package signer adapts the audio signing CLI. Signing is best effort: the
// tool may print nothing to indicate the file was left unsigned.
package signer

import (
	"context"
	"strings"

	"voiceforge/internal/services"
)

// Client invokes the signing CLI.
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

// Sign signs path into dir and returns the signed file, or "" when the tool
// declined to sign.
func (c *Client) Sign(ctx context.Context, path, dir string) (string, error) {
	output, err := c.runner(ctx, c.command, "--input", path, "--output-dir", dir)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "signing", "sign", "signer failed", err)
	}
	return services.ResolveOutputPath(services.LastLine(output), dir), nil
}
