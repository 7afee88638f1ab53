package testsupport

import (
	"path/filepath"
	"testing"

	"voiceforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// DefaultBinaries lists the external programs a full pipeline run invokes.
var DefaultBinaries = []string{"ffmpeg", "ffprobe", "unmix", "rtvc", "voicefixer", "speedmatch", "voicesign", "piper"}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "jobs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ModelDir = filepath.Join(base, "models")
	cfgVal.Separation.SourceWaitSeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithGPU sets the device preference on the test config.
func WithGPU(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Device.UseGPU = enabled
	}
}

// WithVoice registers a TTS voice whose model lives under the model dir.
func WithVoice(name string, sampleRate int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TTS.Voices = append(b.cfg.TTS.Voices, config.Voice{
			Name:       name,
			Model:      filepath.Join(b.cfg.Paths.ModelDir, name+".onnx"),
			SampleRate: sampleRate,
		})
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, DefaultBinaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = DefaultBinaries
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}
		PrependPath(b.t, binDir)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}

// WithModelFiles resolves every model artifact under the model dir and
// writes placeholder files for them.
func WithModelFiles() ConfigOption {
	return func(b *configBuilder) {
		cfg := b.cfg
		paths := []*string{
			&cfg.Cloning.EncoderModel,
			&cfg.Cloning.SynthesizerModel,
			&cfg.Cloning.VocoderModel,
			&cfg.Enhancement.FixerModel,
			&cfg.Enhancement.VocoderModel,
		}
		for i := range cfg.TTS.Voices {
			paths = append(paths, &cfg.TTS.Voices[i].Model)
		}
		for _, p := range paths {
			if !filepath.IsAbs(*p) {
				*p = filepath.Join(cfg.Paths.ModelDir, *p)
			}
			WriteFile(b.t, *p, 64)
		}
	}
}
