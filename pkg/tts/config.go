package tts

import (
	"log/slog"
	"time"
)

const (
	// DefaultModel is the low-latency multilingual model.
	DefaultModel = "eleven_flash_v2_5"

	// DefaultVoice is the "Sarah" preset.
	DefaultVoice = "EXAVITQu4vr4xnSDxMaL"

	DefaultBaseURL = "https://api.elevenlabs.io/v1"
)

// Config holds provider configuration.
type Config struct {
	APIKey        string
	BaseURL       string
	VoiceID       string
	ModelID       string
	VoiceSettings VoiceSettings
	OutputFormat  Encoding
	Timeout       time.Duration
	Logger        *slog.Logger
}

// Option is a functional option for configuring providers.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithVoice sets the voice ID. Blank keeps the default.
func WithVoice(voiceID string) Option {
	return func(c *Config) {
		if voiceID != "" {
			c.VoiceID = voiceID
		}
	}
}

// WithModel sets the model ID. Blank keeps the default.
func WithModel(modelID string) Option {
	return func(c *Config) {
		if modelID != "" {
			c.ModelID = modelID
		}
	}
}

// WithOutputFormat sets the audio output format.
func WithOutputFormat(format Encoding) Option {
	return func(c *Config) {
		c.OutputFormat = format
	}
}

// WithVoiceSettings sets voice characteristics.
func WithVoiceSettings(settings VoiceSettings) Option {
	return func(c *Config) {
		c.VoiceSettings = settings
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		VoiceID:       DefaultVoice,
		ModelID:       DefaultModel,
		VoiceSettings: DefaultVoiceSettings(),
		OutputFormat:  EncodingMP3,
		Timeout:       30 * time.Second,
		Logger:        slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if c.VoiceID == "" {
		return ErrNoVoiceID
	}
	return nil
}
