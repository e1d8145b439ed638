// Package conversation models the conversation history handed over by a
// real-time session host and projects it into chatbot turns.
//
// The host owns an ordered, append-only history of items. Only plain
// messages from the user or the assistant carry conversational text; tool
// calls, tool outputs, handoffs and system/developer instructions are
// framework bookkeeping and never reach the chatbot backend.
//
// Example usage:
//
//	chat := conversation.NewChatContext()
//	chat.AddMessage(conversation.RoleSystem, "You are a helpful assistant.")
//	chat.AddMessage(conversation.RoleUser, "What are your opening hours?")
//
//	turns := conversation.Project(chat.Items())
//	// turns == []Turn{{Role: "user", Content: "What are your opening hours?"}}
//
// Each room also owns an Identity: the backend-issued conversation id that
// lets the hosted chatbot keep its own server-side state across turns.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// ChatContext is an ordered conversation history for one room.
// It is not safe for concurrent use; the session host serializes turns.
type ChatContext struct {
	items []Item
}

// NewChatContext creates a history holding the given items in order.
func NewChatContext(items ...Item) *ChatContext {
	c := &ChatContext{items: make([]Item, 0, len(items))}
	c.items = append(c.items, items...)
	return c
}

// Items returns a copy of the history in chronological order.
func (c *ChatContext) Items() []Item {
	return append([]Item(nil), c.items...)
}

// Len returns the number of items in the history.
func (c *ChatContext) Len() int {
	return len(c.items)
}

// Append adds items to the end of the history.
func (c *ChatContext) Append(items ...Item) {
	c.items = append(c.items, items...)
}

// AddMessage appends a single-part text message and returns it.
func (c *ChatContext) AddMessage(role Role, text string) *Message {
	msg := &Message{
		ID:        "item_" + uuid.NewString(),
		Role:      role,
		Content:   []string{text},
		CreatedAt: time.Now(),
	}
	c.items = append(c.items, msg)
	return msg
}

// Copy returns an independent history with the same items.
func (c *ChatContext) Copy() *ChatContext {
	return NewChatContext(c.items...)
}
