package stage

// Health summarizes whether a pipeline stage can run on this host.
type Health struct {
	Name   string
	Ready  bool
	Detail string
	// Disabled marks stages switched off in configuration. They are ready
	// in the sense that they never block a job.
	Disabled bool
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs a Health record for a stage whose tooling is missing.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}

// Disabled constructs a Health record for a stage turned off by config.
func Disabled(name, reason string) Health {
	return Health{Name: name, Ready: true, Disabled: true, Detail: reason}
}

// Blocking returns the stages that would fail a job.
func Blocking(health []Health) []Health {
	var out []Health
	for _, h := range health {
		if !h.Ready {
			out = append(out, h)
		}
	}
	return out
}
