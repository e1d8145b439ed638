package chatbase

import (
	"context"
	"sync"

	"github.com/teslashibe/go-voicebridge/pkg/conversation"
)

// Mock stands in for Client in tests.
type Mock struct {
	// SendFunc is called when Send is invoked.
	// If nil, the last user turn is echoed back as an ok reply.
	SendFunc func(ctx context.Context, turns []conversation.Turn, conversationID string) Reply

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one Send invocation.
type MockCall struct {
	Turns          []conversation.Turn
	ConversationID string
}

// NewMock creates a mock that echoes the last turn.
func NewMock() *Mock {
	return &Mock{}
}

// MockReply returns a mock that always answers with reply.
func MockReply(reply Reply) *Mock {
	return &Mock{
		SendFunc: func(context.Context, []conversation.Turn, string) Reply {
			return reply
		},
	}
}

// Send records the call and delegates to SendFunc.
func (m *Mock) Send(ctx context.Context, turns []conversation.Turn, conversationID string) Reply {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{
		Turns:          append([]conversation.Turn(nil), turns...),
		ConversationID: conversationID,
	})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, turns, conversationID)
	}
	if len(turns) == 0 {
		return Reply{Kind: KindMalformedResponse}
	}
	return Reply{Kind: KindOK, Text: "echo: " + turns[len(turns)-1].Content}
}

// Calls returns all recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of Send calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent call, or nil if none.
func (m *Mock) LastCall() *MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}

// Reset clears recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
