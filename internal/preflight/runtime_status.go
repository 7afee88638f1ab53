package preflight

import (
	"context"

	"voiceforge/internal/config"
	"voiceforge/internal/deps"
	"voiceforge/internal/device"
	"voiceforge/internal/stage"
)

// StageHealth reports whether each pipeline stage has its tooling available.
func StageHealth(cfg *config.Config) []stage.Health {
	if cfg == nil {
		return nil
	}
	byName := make(map[string]deps.Status)
	for _, status := range CheckSystemDeps(cfg) {
		byName[status.Name] = status
	}
	check := func(stageName string, tools ...string) stage.Health {
		for _, tool := range tools {
			status, ok := byName[tool]
			if !ok {
				continue
			}
			if !status.Available {
				return stage.Unhealthy(stageName, status.Detail)
			}
		}
		return stage.Healthy(stageName)
	}

	health := []stage.Health{
		check("separation", "Separation network", "FFprobe", "FFmpeg"),
		check("cloning", "Cloning engine"),
		check("merge", "FFmpeg"),
		check("enhancement", "Enhancement engine"),
		check("speed", "Speed matcher"),
	}
	switch {
	case !cfg.Signing.Enabled:
		health = append(health, stage.Disabled("signing", "disabled"))
	default:
		health = append(health, check("signing", "Signer"))
	}
	switch {
	case !cfg.Translation.Enabled:
		health = append(health, stage.Disabled("translation", "disabled"))
	case cfg.Translation.APIKey == "":
		health = append(health, stage.Unhealthy("translation", "API key missing"))
	default:
		health = append(health, stage.Healthy("translation"))
	}
	if len(cfg.TTS.Voices) == 0 {
		health = append(health, stage.Disabled("synthesis", "no voices configured"))
	} else {
		health = append(health, check("synthesis", "TTS engine"))
	}
	return health
}

// CheckGPU reports the device jobs will run on.
func CheckGPU(ctx context.Context, cfg *config.Config, probe device.Probe) Result {
	const name = "GPU"
	if cfg == nil || !cfg.Device.UseGPU {
		return Result{Name: name, Passed: true, Detail: "disabled (cpu)"}
	}
	if device.Select(ctx, true, probe) == device.GPU {
		return Result{Name: name, Passed: true, Detail: "available (cuda)"}
	}
	return Result{Name: name, Passed: true, Detail: "requested but unavailable (falling back to cpu)"}
}
