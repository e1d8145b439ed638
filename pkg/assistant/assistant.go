// Package assistant answers one voice turn by relaying the conversation to
// a hosted chatbot.
//
// An Assistant owns the conversation Identity for a single room. Turns for
// one Assistant must be serialized by the caller; separate rooms use
// separate Assistants and share nothing.
package assistant

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/teslashibe/go-voicebridge/pkg/chatbase"
	"github.com/teslashibe/go-voicebridge/pkg/conversation"
)

// Greeting is spoken when there is nothing to relay yet.
const Greeting = "Hello. How can I help you today?"

// Instructions describe the persona for hosts that surface them.
const Instructions = `You are a helpful assistant.
You eagerly assist users with their questions by providing information from your extensive knowledge.
Your responses are concise, to the point, and without any complex formatting or punctuation including emojis, asterisks, or other symbols.
You are curious, friendly, and have a sense of humor.`

// Responder produces the next assistant turn for a conversation history.
// Assistant is the only implementation.
type Responder interface {
	Turn(ctx context.Context, history []conversation.Item) Outcome
}

// Backend sends projected turns to the chatbot.
type Backend interface {
	Send(ctx context.Context, turns []conversation.Turn, conversationID string) chatbase.Reply
}

// Outcome is the full result of one turn.
type Outcome struct {
	Text           string
	Kind           chatbase.Kind
	ConversationID string

	// Greeted is true when the greeting was returned without a backend call.
	Greeted bool
}

// Assistant is the Responder backed by a chatbot Backend.
type Assistant struct {
	backend  Backend
	identity *conversation.Identity
	logger   *slog.Logger

	turns     atomic.Uint64
	greetings atomic.Uint64
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithSeed pre-seeds the conversation identity.
func WithSeed(seed string) Option {
	return func(a *Assistant) {
		a.identity = conversation.NewIdentity(seed)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// New creates an Assistant on top of backend.
func New(backend Backend, opts ...Option) *Assistant {
	a := &Assistant{
		backend:  backend,
		identity: conversation.NewIdentity(""),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "assistant")
	return a
}

// Turn projects the history, greets on an empty projection, otherwise
// calls the backend and records any conversation id it returns.
func (a *Assistant) Turn(ctx context.Context, history []conversation.Item) Outcome {
	a.turns.Add(1)

	turns := conversation.Project(history)
	if len(turns) == 0 {
		a.greetings.Add(1)
		a.logger.Debug("greeting", "items", len(history))
		id, _ := a.identity.Current()
		return Outcome{Text: Greeting, Kind: chatbase.KindOK, ConversationID: id, Greeted: true}
	}

	id, _ := a.identity.Current()
	reply := a.backend.Send(ctx, turns, id)

	if a.identity.Observe(reply.ConversationID) {
		a.logger.Debug("conversation id updated", "conversation_id", reply.ConversationID)
	}
	current, _ := a.identity.Current()

	return Outcome{
		Text:           reply.Utterance(),
		Kind:           reply.Kind,
		ConversationID: current,
	}
}

// Respond returns the text of the next turn.
func (a *Assistant) Respond(ctx context.Context, history []conversation.Item) string {
	return a.Turn(ctx, history).Text
}

// ConversationID returns the current backend conversation id, if any.
func (a *Assistant) ConversationID() (string, bool) {
	return a.identity.Current()
}

// Turns returns how many turns were answered.
func (a *Assistant) Turns() uint64 {
	return a.turns.Load()
}

// Greetings returns how many turns were answered with the greeting.
func (a *Assistant) Greetings() uint64 {
	return a.greetings.Load()
}

var _ Responder = (*Assistant)(nil)
