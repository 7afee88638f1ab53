package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir  string `toml:"work_dir"`
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
	ModelDir string `toml:"model_dir"`
}

// Device controls hardware selection for model inference.
type Device struct {
	UseGPU bool `toml:"use_gpu"`
}

// Tools names the out-of-process media binaries.
type Tools struct {
	FFmpeg         string `toml:"ffmpeg"`
	FFprobe        string `toml:"ffprobe"`
	ShowToolOutput bool   `toml:"show_tool_output"`
}

// Separation configures the voice separation network.
type Separation struct {
	Command           string `toml:"command"`
	Target            string `toml:"target"`
	TrimSilence       bool   `toml:"trim_silence"`
	Resample          bool   `toml:"resample"`
	ConvertedWAV      bool   `toml:"converted_wav"`
	SourceWaitSeconds int    `toml:"source_wait_seconds"`
}

// Cloning configures the voice cloning/synthesis engine.
type Cloning struct {
	Command          string `toml:"command"`
	EncoderModel     string `toml:"encoder_model"`
	SynthesizerModel string `toml:"synthesizer_model"`
	VocoderModel     string `toml:"vocoder_model"`
	PartName         string `toml:"part_name"`
	VoiceLabel       string `toml:"voice_label"`
}

// Merge configures fragment silence trimming.
type Merge struct {
	SilenceThresholdDB float64 `toml:"silence_threshold_db"`
	MinSilenceSeconds  float64 `toml:"min_silence_seconds"`
}

// Enhancement configures the speech restoration engine.
type Enhancement struct {
	Command      string `toml:"command"`
	FixerModel   string `toml:"fixer_model"`
	VocoderModel string `toml:"vocoder_model"`
}

// Speed configures the re-timing adapter.
type Speed struct {
	Command string `toml:"command"`
}

// Signing configures best-effort output signing.
type Signing struct {
	Enabled bool   `toml:"enabled"`
	Command string `toml:"command"`
}

// Translation contains the LLM connection used to translate target text.
type Translation struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Voice describes one pre-loaded text-to-speech voice.
type Voice struct {
	Name       string `toml:"name"`
	Model      string `toml:"model"`
	SampleRate int    `toml:"sample_rate"`
}

// TTS configures the text-to-speech voice registry.
type TTS struct {
	Command string  `toml:"command"`
	Voices  []Voice `toml:"voices"`
}

// Notifications configures ntfy job notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	NotifySuccess  bool   `toml:"notify_success"`
}

// Workdir controls job scratch directory retention.
type Workdir struct {
	RetentionHours int  `toml:"retention_hours"`
	KeepFailed     bool `toml:"keep_failed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for voiceforge.
//
// Configuration sections by subsystem:
//   - Paths: job scratch root, state, logs, and model artifacts
//   - Device: CPU/GPU preference
//   - Tools: ffmpeg/ffprobe binaries and diagnostic output
//   - Separation, Cloning, Merge, Enhancement, Speed, Signing: pipeline stages
//   - Translation: LLM used to translate target text
//   - TTS: pre-loaded voices for the text-to-speech pipeline
//   - Notifications: ntfy topic for job results
//   - Workdir: retention of per-job scratch directories
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Device        Device        `toml:"device"`
	Tools         Tools         `toml:"tools"`
	Separation    Separation    `toml:"separation"`
	Cloning       Cloning       `toml:"cloning"`
	Merge         Merge         `toml:"merge"`
	Enhancement   Enhancement   `toml:"enhancement"`
	Speed         Speed         `toml:"speed"`
	Signing       Signing       `toml:"signing"`
	Translation   Translation   `toml:"translation"`
	TTS           TTS           `toml:"tts"`
	Notifications Notifications `toml:"notifications"`
	Workdir       Workdir       `toml:"workdir"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voiceforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the scratch, state, and log roots.
// ModelDir is created on a best-effort basis since model artifacts are
// usually provisioned out of band.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.ModelDir) != "" {
		_ = os.MkdirAll(c.Paths.ModelDir, 0o755)
	}
	return nil
}

// HistoryPath returns the SQLite job ledger location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// GPULockPath returns the lock file callers use to serialize GPU jobs.
func (c *Config) GPULockPath() string {
	return filepath.Join(c.Paths.StateDir, "gpu.lock")
}

// ModelPath resolves a model artifact against ModelDir. Absolute paths are
// returned unchanged.
func (c *Config) ModelPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.ModelDir, name)
}

// VoiceByName returns the configured TTS voice with the given name.
func (c *Config) VoiceByName(name string) (Voice, bool) {
	for _, voice := range c.TTS.Voices {
		if strings.EqualFold(voice.Name, strings.TrimSpace(name)) {
			return voice, true
		}
	}
	return Voice{}, false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() (string, error) {
	var buf strings.Builder
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return buf.String(), nil
}

// CheckUnknownKeys reports keys in the file at path that no config field
// accepts, which usually means a misspelled option.
func CheckUnknownKeys(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var probe Config
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&probe); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := make([]string, 0, len(strict.Errors))
			for _, e := range strict.Errors {
				row, _ := e.Position()
				keys = append(keys, fmt.Sprintf("%s (line %d)", strings.Join(e.Key(), "."), row))
			}
			return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
