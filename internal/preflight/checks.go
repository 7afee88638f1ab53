package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"voiceforge/internal/config"
	"voiceforge/internal/deps"
	"voiceforge/internal/services/llm"
)

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.Translation, opts ...llm.Option) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts = append([]llm.Option{llm.WithRetry(1, 0, 0)}, opts...)
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, opts...)

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckModels verifies that every configured model artifact is a readable file.
func CheckModels(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	models := []struct {
		name string
		path string
	}{
		{"Encoder model", cfg.Cloning.EncoderModel},
		{"Synthesizer model", cfg.Cloning.SynthesizerModel},
		{"Vocoder model", cfg.Cloning.VocoderModel},
		{"Fixer model", cfg.Enhancement.FixerModel},
		{"Enhancement vocoder model", cfg.Enhancement.VocoderModel},
	}
	results := make([]Result, 0, len(models)+len(cfg.TTS.Voices))
	for _, m := range models {
		results = append(results, checkFile(m.name, m.path))
	}
	for _, voice := range cfg.TTS.Voices {
		results = append(results, checkFile("Voice "+voice.Name, voice.Model))
	}
	return results
}

func checkFile(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: unreadable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// Requirements lists the external binaries the config needs.
func Requirements(cfg *config.Config) []deps.Requirement {
	requirements := []deps.Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "Required for audio extraction, trimming and concatenation"},
		{Name: "FFprobe", Command: cfg.Tools.FFprobe, Description: "Required for media inspection"},
		{Name: "Separation network", Command: cfg.Separation.Command, Description: "Required for voice separation"},
		{Name: "Cloning engine", Command: cfg.Cloning.Command, Description: "Required for voice cloning"},
		{Name: "Enhancement engine", Command: cfg.Enhancement.Command, Description: "Required for speech restoration"},
		{Name: "Speed matcher", Command: cfg.Speed.Command, Description: "Required for re-timing cloned speech"},
		{Name: "Signer", Command: cfg.Signing.Command, Description: "Signs cloned output", Optional: true},
	}
	if len(cfg.TTS.Voices) > 0 {
		requirements = append(requirements, deps.Requirement{
			Name:        "TTS engine",
			Command:     cfg.TTS.Command,
			Description: "Required for text-to-speech voices",
		})
	}
	return requirements
}

// CheckSystemDeps evaluates all system-level dependencies for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(Requirements(cfg))
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
