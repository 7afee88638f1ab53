package config

const (
	defaultConfigPath             = "~/.config/voiceforge/config.toml"
	defaultWorkDir                = "~/.local/share/voiceforge/jobs"
	defaultStateDir               = "~/.local/share/voiceforge"
	defaultLogDir                 = "~/.local/share/voiceforge/logs"
	defaultModelDir               = "~/.cache/voiceforge/models"
	defaultFFmpeg                 = "ffmpeg"
	defaultFFprobe                = "ffprobe"
	defaultSeparationCommand      = "unmix"
	defaultSeparationTarget       = "vocals"
	defaultSourceWaitSeconds      = 5
	defaultCloningCommand         = "rtvc"
	defaultEncoderModel           = "rtvc/encoder.pt"
	defaultSynthesizerModel       = "rtvc/synthesizer.pt"
	defaultVocoderModel           = "rtvc/vocoder.pt"
	defaultPartName               = "rtvc_output_part"
	defaultVoiceLabel             = "Cloning voice"
	defaultSilenceThresholdDB     = -50.0
	defaultMinSilenceSeconds      = 0.05
	defaultEnhancementCommand     = "voicefixer"
	defaultFixerModel             = "voicefixer/vf.ckpt"
	defaultEnhancementVocoder     = "voicefixer/model.ckpt-1490000_trimed.pt"
	defaultSpeedCommand           = "speedmatch"
	defaultSigningCommand         = "voicesign"
	defaultTranslationBaseURL     = "https://openrouter.ai/api/v1"
	defaultTranslationModel       = "google/gemini-3-flash-preview"
	defaultTranslationTimeoutSecs = 60
	defaultTTSCommand             = "piper"
	defaultVoiceSampleRate        = 22050
	defaultNtfyTimeoutSeconds     = 10
	defaultRetentionHours         = 72
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			ModelDir: defaultModelDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
		},
		Separation: Separation{
			Command:           defaultSeparationCommand,
			Target:            defaultSeparationTarget,
			TrimSilence:       true,
			Resample:          true,
			ConvertedWAV:      true,
			SourceWaitSeconds: defaultSourceWaitSeconds,
		},
		Cloning: Cloning{
			Command:          defaultCloningCommand,
			EncoderModel:     defaultEncoderModel,
			SynthesizerModel: defaultSynthesizerModel,
			VocoderModel:     defaultVocoderModel,
			PartName:         defaultPartName,
			VoiceLabel:       defaultVoiceLabel,
		},
		Merge: Merge{
			SilenceThresholdDB: defaultSilenceThresholdDB,
			MinSilenceSeconds:  defaultMinSilenceSeconds,
		},
		Enhancement: Enhancement{
			Command:      defaultEnhancementCommand,
			FixerModel:   defaultFixerModel,
			VocoderModel: defaultEnhancementVocoder,
		},
		Speed: Speed{
			Command: defaultSpeedCommand,
		},
		Signing: Signing{
			Enabled: true,
			Command: defaultSigningCommand,
		},
		Translation: Translation{
			BaseURL:        defaultTranslationBaseURL,
			Model:          defaultTranslationModel,
			TimeoutSeconds: defaultTranslationTimeoutSecs,
		},
		TTS: TTS{
			Command: defaultTTSCommand,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeoutSeconds,
			NotifySuccess:  true,
		},
		Workdir: Workdir{
			RetentionHours: defaultRetentionHours,
			KeepFailed:     true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
