package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStages(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStages() error {
	required := []struct {
		key   string
		value string
	}{
		{"separation.command", c.Separation.Command},
		{"cloning.command", c.Cloning.Command},
		{"enhancement.command", c.Enhancement.Command},
		{"speed.command", c.Speed.Command},
	}
	for _, entry := range required {
		if strings.TrimSpace(entry.value) == "" {
			return fmt.Errorf("%s must be set", entry.key)
		}
	}
	if c.Signing.Enabled && strings.TrimSpace(c.Signing.Command) == "" {
		return errors.New("signing.command must be set when signing.enabled is true")
	}
	if strings.ContainsAny(c.Cloning.PartName, `/\`) {
		return fmt.Errorf("cloning.part_name %q must not contain path separators", c.Cloning.PartName)
	}
	return nil
}

func (c *Config) validateMerge() error {
	if c.Merge.SilenceThresholdDB >= 0 {
		return errors.New("merge.silence_threshold_db must be negative (dBFS)")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if !c.Translation.Enabled {
		return nil
	}
	if c.Translation.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("translation.api_key is required when translation.enabled is true. Set VOICEFORGE_TRANSLATION_API_KEY or edit %s", defaultPath)
	}
	return nil
}

func (c *Config) validateTTS() error {
	seen := make(map[string]struct{}, len(c.TTS.Voices))
	for i, voice := range c.TTS.Voices {
		if voice.Name == "" {
			return fmt.Errorf("tts.voices[%d].name must be set", i)
		}
		if voice.Model == "" {
			return fmt.Errorf("tts.voices[%d].model must be set", i)
		}
		key := strings.ToLower(voice.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("tts.voices: duplicate voice name %q", voice.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic %q must be a full http(s) URL", topic)
	}
	return nil
}
