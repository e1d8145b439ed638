package chatbase

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultURL is the hosted chat completion endpoint.
	DefaultURL = "https://www.chatbase.co/api/v1/chat"

	// DefaultTimeout bounds a whole request, including reading the body.
	DefaultTimeout = 45 * time.Second

	// MaxErrorBody is how many characters of an error body are logged.
	MaxErrorBody = 500

	// MaxResponseBody caps how many bytes of a reply are read.
	MaxResponseBody = 1 << 20
)

// Config holds client configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	APIKey    string
	ChatbotID string
	URL       string
	Timeout   time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithChatbotID sets the hosted chatbot to talk to.
func WithChatbotID(id string) Option {
	return func(c *Config) {
		c.ChatbotID = id
	}
}

// WithURL overrides the chat endpoint.
func WithURL(url string) Option {
	return func(c *Config) {
		c.URL = url
	}
}

// WithTimeout sets the total request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
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
		URL:     DefaultURL,
		Timeout: DefaultTimeout,
		Logger:  slog.Default(),
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
	if c.ChatbotID == "" {
		return ErrNoChatbotID
	}
	return nil
}
