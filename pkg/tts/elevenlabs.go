package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teslashibe/go-voicebridge/internal/httpc"
)

const providerElevenLabs = "elevenlabs"

// ElevenLabs implements Provider over the ElevenLabs REST API.
type ElevenLabs struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// NewElevenLabs creates an ElevenLabs provider.
func NewElevenLabs(opts ...Option) (*ElevenLabs, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &ElevenLabs{
		config: cfg,
		client: httpc.New(cfg.Timeout),
		logger: cfg.Logger.With("component", "tts.elevenlabs"),
	}, nil
}

// Synthesize converts text to audio.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	start := time.Now()

	body, err := json.Marshal(synthesisRequest{
		Text:          text,
		ModelID:       e.config.ModelID,
		VoiceSettings: e.config.VoiceSettings,
	})
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("marshal payload: %w", err))
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s",
		e.config.BaseURL, url.PathEscape(e.config.VoiceID), url.QueryEscape(string(e.config.OutputFormat)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("xi-api-key", e.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", e.config.OutputFormat.MIMEType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, WrapError(providerElevenLabs, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("read response: %w", err))
	}

	latency := time.Since(start).Milliseconds()
	e.logger.Debug("synthesized reply",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency,
		"model", e.config.ModelID,
	)

	return &AudioResult{
		Audio:     audio,
		Format:    e.config.OutputFormat.Format(),
		Duration:  estimateDuration(e.config.OutputFormat, len(audio)),
		CharCount: len(text),
		LatencyMs: latency,
	}, nil
}

// Health checks connectivity and API key validity.
func (e *ElevenLabs) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.config.BaseURL+"/user", nil)
	if err != nil {
		return WrapError(providerElevenLabs, err)
	}
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return WrapError(providerElevenLabs, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseError(resp)
	}
	return nil
}

// Close releases idle connections.
func (e *ElevenLabs) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// VoiceID returns the configured voice.
func (e *ElevenLabs) VoiceID() string {
	return e.config.VoiceID
}

// ModelID returns the configured model.
func (e *ElevenLabs) ModelID() string {
	return e.config.ModelID
}

func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var detail struct {
		Detail struct {
			Message string `json:"message"`
		} `json:"detail"`
	}
	message := string(body)
	if json.Unmarshal(body, &detail) == nil && detail.Detail.Message != "" {
		message = detail.Detail.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerElevenLabs,
	}
}

// estimateDuration assumes 16-bit mono for PCM; other encodings report 0.
func estimateDuration(enc Encoding, n int) time.Duration {
	if !enc.IsPCM() {
		return 0
	}
	samples := n / 2
	return time.Duration(float64(samples) / float64(enc.SampleRate()) * float64(time.Second))
}

var _ Provider = (*ElevenLabs)(nil)
