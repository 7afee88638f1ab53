package deps

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"

	"voiceforge/internal/services"
)

// DefaultGPUCommand lists CUDA devices; it exits non-zero when no driver is loaded.
const DefaultGPUCommand = "nvidia-smi"

// GPUProbe reports whether a CUDA device is usable. Detection runs once per
// probe and the answer is reused for the life of the process.
type GPUProbe struct {
	Command string
	Runner  services.CommandRunner

	once      sync.Once
	available bool
}

// NewGPUProbe constructs a probe backed by nvidia-smi.
func NewGPUProbe() *GPUProbe {
	return &GPUProbe{Command: DefaultGPUCommand}
}

// GPUAvailable implements device.Probe.
func (p *GPUProbe) GPUAvailable(ctx context.Context) bool {
	if p == nil {
		return false
	}
	p.once.Do(func() {
		p.available = p.detect(ctx)
	})
	return p.available
}

func (p *GPUProbe) detect(ctx context.Context) bool {
	if visible, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok {
		switch strings.TrimSpace(visible) {
		case "", "-1", "none", "NoDevFiles":
			return false
		}
	}
	command := strings.TrimSpace(p.Command)
	if command == "" {
		command = DefaultGPUCommand
	}
	runner := p.Runner
	if runner == nil {
		if _, err := exec.LookPath(command); err != nil {
			return false
		}
		runner = services.RunCommand
	}
	output, err := runner(ctx, command, "-L")
	if err != nil {
		return false
	}
	return strings.Contains(string(output), "GPU")
}
