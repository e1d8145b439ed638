package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvChatbaseAPIKey    = "CHATBASE_API_KEY"
	EnvChatbaseChatbotID = "CHATBASE_CHATBOT_ID"
	EnvChatbaseAPIURL    = "CHATBASE_API_URL"
	EnvElevenAPIKey      = "ELEVEN_API_KEY"
	EnvElevenVoiceID     = "ELEVEN_VOICE_ID"
	EnvPort              = "PORT"
	EnvLogLevel          = "LOG_LEVEL"
)

// Require returns the value of an environment variable or a *MissingError
// naming it when it is unset or blank.
func Require(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", &MissingError{Name: name}
	}
	return value, nil
}

// Lookup returns the trimmed value of name, or fallback when unset or blank.
func Lookup(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

// LoadDotenv loads KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is not an error. Variables already present in
// the environment are preserved unless override is set.
func LoadDotenv(path string, override bool) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	load := godotenv.Load
	if override {
		load = godotenv.Overload
	}
	if err := load(path); err != nil {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}
