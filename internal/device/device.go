// Package device selects the inference device for model-backed stages.
package device

import "context"

// Device names the hardware a model stage runs on. Values match the device
// strings the model CLIs accept.
type Device string

const (
	CPU Device = "cpu"
	GPU Device = "cuda"
)

// Probe reports whether a GPU is usable on this host.
type Probe interface {
	GPUAvailable(ctx context.Context) bool
}

// Select returns GPU only when the caller asked for it and the probe reports
// one; every other combination yields CPU. The probe is not consulted unless
// the GPU was requested.
func Select(ctx context.Context, requestGPU bool, probe Probe) Device {
	if !requestGPU || probe == nil {
		return CPU
	}
	if probe.GPUAvailable(ctx) {
		return GPU
	}
	return CPU
}

// UseCUDA reports whether d is the GPU device.
func (d Device) UseCUDA() bool {
	return d == GPU
}

func (d Device) String() string {
	return string(d)
}
