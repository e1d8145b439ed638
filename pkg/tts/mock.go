package tts

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for testing.
type Mock struct {
	// SynthesizeFunc is called when Synthesize is invoked.
	// If nil, returns silent PCM of a length proportional to the text.
	SynthesizeFunc func(ctx context.Context, text string) (*AudioResult, error)

	// HealthFunc is called when Health is invoked. If nil, returns nil.
	HealthFunc func(ctx context.Context) error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation.
type MockCall struct {
	Method string
	Text   string
	Time   time.Time
}

// NewMock creates a mock that returns silence.
func NewMock() *Mock {
	return &Mock{}
}

// MockError returns a mock whose every call fails with err.
func MockError(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(context.Context, string) (*AudioResult, error) {
			return nil, err
		},
		HealthFunc: func(context.Context) error {
			return err
		},
	}
}

// Synthesize records the call and delegates to SynthesizeFunc.
func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	m.record("Synthesize", text)
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}

	// ~20ms of 24kHz PCM16 per character
	const bytesPerChar = 960
	return &AudioResult{
		Audio:     make([]byte, len(text)*bytesPerChar),
		Format:    EncodingPCM24.Format(),
		Duration:  time.Duration(len(text)) * 20 * time.Millisecond,
		CharCount: len(text),
		LatencyMs: 1,
	}, nil
}

// Health records the call and delegates to HealthFunc.
func (m *Mock) Health(ctx context.Context) error {
	m.record("Health", "")
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close records the call.
func (m *Mock) Close() error {
	m.record("Close", "")
	return nil
}

func (m *Mock) record(method, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Text: text, Time: time.Now()})
}

// Calls returns all recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns how many times method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

var _ Provider = (*Mock)(nil)
