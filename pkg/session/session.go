package session

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-voicebridge/pkg/assistant"
	"github.com/teslashibe/go-voicebridge/pkg/chatbase"
	"github.com/teslashibe/go-voicebridge/pkg/conversation"
	"github.com/teslashibe/go-voicebridge/pkg/speech"
	"github.com/teslashibe/go-voicebridge/pkg/tts"
)

// Result is the reply to one turn.
type Result struct {
	Room           string
	Text           string
	ConversationID string
	Kind           chatbase.Kind
	Greeted        bool
	Audio          *tts.AudioResult
}

// Info is a point-in-time view of a session.
type Info struct {
	Room           string    `json:"room"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Turns          uint64    `json:"turns"`
	Items          int       `json:"items"`
	CreatedAt      time.Time `json:"created_at"`
	LastActive     time.Time `json:"last_active"`
}

// Session is one room's conversation. Turns are serialized; snapshots never
// wait on a turn in flight.
type Session struct {
	room    string
	relay   *speech.Relay
	manager *Manager

	turnMu sync.Mutex
	chat   *conversation.ChatContext

	mu             sync.Mutex // guards the snapshot fields
	conversationID string
	items          int
	turns          uint64
	createdAt      time.Time
	lastActive     time.Time
}

func newSession(room string, a *assistant.Assistant, m *Manager) *Session {
	now := time.Now()
	id, _ := a.ConversationID()
	return &Session{
		room:           room,
		relay:          speech.NewRelay(a, m.voice, m.logger.With("room", room)),
		manager:        m,
		chat:           conversation.NewChatContext(),
		conversationID: id,
		createdAt:      now,
		lastActive:     now,
	}
}

// Room returns the room name.
func (s *Session) Room() string {
	return s.room
}

// Respond answers a turn over a caller-supplied history. The session's own
// history is left untouched.
func (s *Session) Respond(ctx context.Context, history []conversation.Item, speak bool) Result {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	return s.turn(ctx, history, speak)
}

// Say appends a user utterance to the session history, answers it and
// records the reply.
func (s *Session) Say(ctx context.Context, text string, speak bool) Result {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.chat.AddMessage(conversation.RoleUser, text)
	s.setItems(s.chat.Len())
	res := s.turn(ctx, s.chat.Items(), speak)
	s.chat.AddMessage(conversation.RoleAssistant, res.Text)
	s.setItems(s.chat.Len())
	return res
}

// Greet answers the session's history as it stands. On a fresh session
// that is the opening greeting, produced without a backend call.
func (s *Session) Greet(ctx context.Context, speak bool) Result {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	res := s.turn(ctx, s.chat.Items(), speak)
	s.chat.AddMessage(conversation.RoleAssistant, res.Text)
	s.setItems(s.chat.Len())
	return res
}

func (s *Session) turn(ctx context.Context, history []conversation.Item, speak bool) Result {
	u := s.relay.Respond(ctx, history, speak)

	res := Result{
		Room:           s.room,
		Text:           u.Text,
		ConversationID: u.Outcome.ConversationID,
		Kind:           u.Outcome.Kind,
		Greeted:        u.Outcome.Greeted,
		Audio:          u.Audio,
	}

	s.mu.Lock()
	s.turns++
	s.lastActive = time.Now()
	if res.ConversationID != "" {
		s.conversationID = res.ConversationID
	}
	s.mu.Unlock()

	s.manager.observe(res)
	return res
}

func (s *Session) setItems(n int) {
	s.mu.Lock()
	s.items = n
	s.mu.Unlock()
}

// CanSpeak reports whether replies can be voiced.
func (s *Session) CanSpeak() bool {
	return s.relay.CanSpeak()
}

// Info returns a snapshot of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Info{
		Room:           s.room,
		ConversationID: s.conversationID,
		Turns:          s.turns,
		Items:          s.items,
		CreatedAt:      s.createdAt,
		LastActive:     s.lastActive,
	}
}
