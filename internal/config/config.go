// Package config provides configuration loading for go-voicebridge commands.
//
// Settings come from three layers, later layers winning:
// built-in defaults, an optional YAML file, then environment variables
// (optionally seeded from a .env file).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultPort            = 8080
	DefaultChatbaseURL     = "https://www.chatbase.co/api/v1/chat"
	DefaultChatbaseTimeout = 45 * time.Second
	DefaultTTSModel        = "eleven_flash_v2_5"
	DefaultTTSVoice        = "EXAVITQu4vr4xnSDxMaL"
	DefaultLogLevel        = "info"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Chatbase ChatbaseConfig `yaml:"chatbase"`
	TTS      TTSConfig      `yaml:"tts"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	Port  int  `yaml:"port"`
	Debug bool `yaml:"debug"` // request logging
}

// ChatbaseConfig configures the hosted chatbot backend.
type ChatbaseConfig struct {
	APIKey    string        `yaml:"api_key"`
	ChatbotID string        `yaml:"chatbot_id"`
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// TTSConfig configures speech synthesis of replies.
// Synthesis is disabled when APIKey is empty.
type TTSConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
	Model   string `yaml:"model"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Enabled reports whether replies should be voiced.
func (c TTSConfig) Enabled() bool {
	return c.APIKey != ""
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: DefaultPort},
		Chatbase: ChatbaseConfig{
			URL:     DefaultChatbaseURL,
			Timeout: DefaultChatbaseTimeout,
		},
		TTS: TTSConfig{
			VoiceID: DefaultTTSVoice,
			Model:   DefaultTTSModel,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Chatbase.APIKey == "" {
		return &MissingError{Name: EnvChatbaseAPIKey}
	}
	if c.Chatbase.ChatbotID == "" {
		return &MissingError{Name: EnvChatbaseChatbotID}
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("config: server port must be positive, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Chatbase.APIKey = Lookup(EnvChatbaseAPIKey, c.Chatbase.APIKey)
	c.Chatbase.ChatbotID = Lookup(EnvChatbaseChatbotID, c.Chatbase.ChatbotID)
	c.Chatbase.URL = Lookup(EnvChatbaseAPIURL, c.Chatbase.URL)
	c.TTS.APIKey = Lookup(EnvElevenAPIKey, c.TTS.APIKey)
	c.TTS.VoiceID = Lookup(EnvElevenVoiceID, c.TTS.VoiceID)
	c.Log.Level = Lookup(EnvLogLevel, c.Log.Level)

	if port := Lookup(EnvPort, ""); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", EnvPort, port, err)
		}
		c.Server.Port = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Chatbase.URL == "" {
		c.Chatbase.URL = DefaultChatbaseURL
	}
	if c.Chatbase.Timeout <= 0 {
		c.Chatbase.Timeout = DefaultChatbaseTimeout
	}
	if c.TTS.VoiceID == "" {
		c.TTS.VoiceID = DefaultTTSVoice
	}
	if c.TTS.Model == "" {
		c.TTS.Model = DefaultTTSModel
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
