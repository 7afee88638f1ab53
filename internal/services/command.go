package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner executes an external program and returns its standard output.
// Adapters accept a runner so tests can substitute canned tool behaviour.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// RunCommand is the default CommandRunner. Standard error is captured and
// folded into the returned error when the process fails.
func RunCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// StreamingRunner returns a CommandRunner that passes the tool's output
// through to stdout and stderr as it is produced. The returned output is
// always empty.
func StreamingRunner(stdout, stderr io.Writer) CommandRunner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return nil, nil
	}
}

// InputRunner is a CommandRunner that also feeds stdin to the process.
type InputRunner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// RunCommandWithInput is the default InputRunner.
func RunCommandWithInput(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// ResolveOutputPath interprets the artifact path a tool printed. Relative
// paths are taken relative to dir. An empty line yields an empty path.
func ResolveOutputPath(line, dir string) string {
	line = strings.TrimSpace(line)
	if line == "" || filepath.IsAbs(line) {
		return line
	}
	return filepath.Join(dir, line)
}

// LastLine returns the final non-empty line of tool output. Model CLIs print
// the path of the artifact they produced as their last line.
func LastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
