package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeStages()
	c.normalizeTranslation()
	c.normalizeTTS()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ModelDir, err = expandPath(c.Paths.ModelDir); err != nil {
		return fmt.Errorf("paths.model_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	if value, ok := os.LookupEnv("VOICEFORGE_DEBUG"); ok && strings.EqualFold(strings.TrimSpace(value), "true") {
		c.Tools.ShowToolOutput = true
	}
}

func (c *Config) normalizeStages() {
	c.Separation.Command = strings.TrimSpace(c.Separation.Command)
	c.Separation.Target = strings.ToLower(strings.TrimSpace(c.Separation.Target))
	if c.Separation.Target == "" {
		c.Separation.Target = defaultSeparationTarget
	}
	if c.Separation.SourceWaitSeconds < 0 {
		c.Separation.SourceWaitSeconds = 0
	}

	c.Cloning.Command = strings.TrimSpace(c.Cloning.Command)
	c.Cloning.PartName = strings.TrimSpace(c.Cloning.PartName)
	if c.Cloning.PartName == "" {
		c.Cloning.PartName = defaultPartName
	}
	c.Cloning.VoiceLabel = strings.TrimSpace(c.Cloning.VoiceLabel)
	if c.Cloning.VoiceLabel == "" {
		c.Cloning.VoiceLabel = defaultVoiceLabel
	}
	c.Cloning.EncoderModel = c.ModelPath(c.Cloning.EncoderModel)
	c.Cloning.SynthesizerModel = c.ModelPath(c.Cloning.SynthesizerModel)
	c.Cloning.VocoderModel = c.ModelPath(c.Cloning.VocoderModel)

	if c.Merge.MinSilenceSeconds <= 0 {
		c.Merge.MinSilenceSeconds = defaultMinSilenceSeconds
	}

	c.Enhancement.Command = strings.TrimSpace(c.Enhancement.Command)
	c.Enhancement.FixerModel = c.ModelPath(c.Enhancement.FixerModel)
	c.Enhancement.VocoderModel = c.ModelPath(c.Enhancement.VocoderModel)

	c.Speed.Command = strings.TrimSpace(c.Speed.Command)
	c.Signing.Command = strings.TrimSpace(c.Signing.Command)
}

func (c *Config) normalizeTranslation() {
	c.Translation.BaseURL = strings.TrimSpace(c.Translation.BaseURL)
	if c.Translation.BaseURL == "" {
		c.Translation.BaseURL = defaultTranslationBaseURL
	}
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	if c.Translation.Model == "" {
		c.Translation.Model = defaultTranslationModel
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultTranslationTimeoutSecs
	}
	c.Translation.APIKey = strings.TrimSpace(c.Translation.APIKey)
	if c.Translation.APIKey == "" {
		if value, ok := os.LookupEnv("VOICEFORGE_TRANSLATION_API_KEY"); ok {
			c.Translation.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Translation.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.Command = strings.TrimSpace(c.TTS.Command)
	if c.TTS.Command == "" {
		c.TTS.Command = defaultTTSCommand
	}
	for i := range c.TTS.Voices {
		voice := &c.TTS.Voices[i]
		voice.Name = strings.TrimSpace(voice.Name)
		voice.Model = c.ModelPath(voice.Model)
		if voice.SampleRate <= 0 {
			voice.SampleRate = defaultVoiceSampleRate
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeoutSeconds
	}
	if c.Workdir.RetentionHours < 0 {
		c.Workdir.RetentionHours = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
