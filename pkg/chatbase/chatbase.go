// Package chatbase is a client for a hosted Chatbase chatbot.
//
// Send never returns an error. Every failure is logged and folded into a
// Reply whose Utterance is one of two fixed fallback strings, so a voice
// pipeline always has something to say.
//
// Example usage:
//
//	client, _ := chatbase.NewClient(
//	    chatbase.WithAPIKey(os.Getenv("CHATBASE_API_KEY")),
//	    chatbase.WithChatbotID(os.Getenv("CHATBASE_CHATBOT_ID")),
//	)
//	defer client.Close()
//
//	reply := client.Send(ctx, turns, "")
//	speak(reply.Utterance())
package chatbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/teslashibe/go-voicebridge/internal/httpc"
	"github.com/teslashibe/go-voicebridge/pkg/conversation"
)

// Client talks to the chat endpoint.
type Client struct {
	config *Config
	client *http.Client
	logger *slog.Logger

	requests  atomic.Uint64
	ok        atomic.Uint64
	transport atomic.Uint64
	backend   atomic.Uint64
	malformed atomic.Uint64
}

// Stats holds outcome counters.
type Stats struct {
	Requests          uint64
	OK                uint64
	TransportFailures uint64
	BackendErrors     uint64
	MalformedReplies  uint64
}

// Count returns the counter for one outcome kind.
func (s Stats) Count(kind Kind) uint64 {
	switch kind {
	case KindOK:
		return s.OK
	case KindTransportFailure:
		return s.TransportFailures
	case KindBackendError:
		return s.BackendErrors
	case KindMalformedResponse:
		return s.MalformedReplies
	}
	return 0
}

// NewClient creates a client. It fails only on missing credentials.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = httpc.New(cfg.Timeout)
	}

	return &Client{
		config: cfg,
		client: client,
		logger: cfg.Logger.With("component", "chatbase.client"),
	}, nil
}

// Send posts the turns and returns the validated reply.
// An empty conversationID starts a new backend conversation.
func (c *Client) Send(ctx context.Context, turns []conversation.Turn, conversationID string) Reply {
	c.requests.Add(1)
	start := time.Now()

	reply := c.send(ctx, turns, conversationID)
	reply.Latency = time.Since(start)

	c.record(reply)
	return reply
}

func (c *Client) send(ctx context.Context, turns []conversation.Turn, conversationID string) Reply {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, err := json.Marshal(NewRequest(c.config.ChatbotID, turns, conversationID))
	if err != nil {
		return Reply{Kind: KindTransportFailure, Err: &TransportError{Err: fmt.Errorf("marshal request: %w", err)}}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return Reply{Kind: KindTransportFailure, Err: &TransportError{Err: fmt.Errorf("create request: %w", err)}}
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Reply{Kind: KindTransportFailure, Err: &TransportError{Err: err}}
	}
	defer resp.Body.Close()

	limit := int64(MaxResponseBody)
	if resp.StatusCode >= 400 {
		limit = MaxErrorBody * utf8.UTFMax
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return Reply{
			Kind:   KindTransportFailure,
			Status: resp.StatusCode,
			Err:    &TransportError{Err: fmt.Errorf("read response: %w", err)},
		}
	}

	if resp.StatusCode >= 400 {
		return Reply{
			Kind:   KindBackendError,
			Status: resp.StatusCode,
			Err:    &APIError{StatusCode: resp.StatusCode, Body: truncate(string(raw), MaxErrorBody)},
		}
	}

	reply := Decode(raw)
	reply.Status = resp.StatusCode
	return reply
}

// record updates counters and logs failures.
func (c *Client) record(reply Reply) {
	switch reply.Kind {
	case KindOK:
		c.ok.Add(1)
		c.logger.Debug("chatbase reply",
			"status", reply.Status,
			"chars", len(reply.Text),
			"latency_ms", reply.Latency.Milliseconds(),
		)
	case KindBackendError:
		c.backend.Add(1)
		attrs := []any{"kind", reply.Kind, "status", reply.Status, "latency_ms", reply.Latency.Milliseconds()}
		if apiErr, ok := reply.Err.(*APIError); ok {
			attrs = append(attrs, "body", apiErr.Body)
		}
		c.logger.Error("chatbase request failed", attrs...)
	case KindMalformedResponse:
		c.malformed.Add(1)
		payload := any(nil)
		if mErr, ok := reply.Err.(*MalformedError); ok {
			payload = mErr.Payload
		}
		c.logger.Error("chatbase returned invalid response",
			"kind", reply.Kind,
			"status", reply.Status,
			"payload", payload,
		)
	default:
		c.transport.Add(1)
		c.logger.Error("chatbase request failed",
			"kind", reply.Kind,
			"status", reply.Status,
			"error", reply.Err,
			"latency_ms", reply.Latency.Milliseconds(),
		)
	}
}

// Stats returns a snapshot of outcome counters.
func (c *Client) Stats() Stats {
	return Stats{
		Requests:          c.requests.Load(),
		OK:                c.ok.Load(),
		TransportFailures: c.transport.Load(),
		BackendErrors:     c.backend.Load(),
		MalformedReplies:  c.malformed.Load(),
	}
}

// ChatbotID returns the configured chatbot id.
func (c *Client) ChatbotID() string {
	return c.config.ChatbotID
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
