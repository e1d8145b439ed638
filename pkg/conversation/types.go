package conversation

import (
	"strings"
	"time"
)

// ItemType discriminates entries in a conversation history.
type ItemType string

const (
	ItemMessage            ItemType = "message"
	ItemFunctionCall       ItemType = "function_call"
	ItemFunctionCallOutput ItemType = "function_call_output"
	ItemAgentHandoff       ItemType = "agent_handoff"
)

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Item is one entry of a host-owned conversation history.
type Item interface {
	// ItemType returns the entry kind.
	ItemType() ItemType

	// ItemRole returns the author for messages and "" for everything else.
	ItemRole() Role

	// TextContent returns the text parts joined by newlines, or "".
	TextContent() string
}

// Turn is one role/content pair in the chatbot wire format.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Message is a chat message with one or more text parts.
type Message struct {
	ID          string
	Role        Role
	Content     []string
	Interrupted bool
	CreatedAt   time.Time
}

// ItemType implements Item.
func (m *Message) ItemType() ItemType { return ItemMessage }

// ItemRole implements Item.
func (m *Message) ItemRole() Role { return m.Role }

// TextContent implements Item.
func (m *Message) TextContent() string {
	return strings.Join(m.Content, "\n")
}

// FunctionCall records a tool invocation requested by the model.
type FunctionCall struct {
	ID        string
	CallID    string
	Name      string
	Arguments string
	CreatedAt time.Time
}

// ItemType implements Item.
func (f *FunctionCall) ItemType() ItemType { return ItemFunctionCall }

// ItemRole implements Item.
func (f *FunctionCall) ItemRole() Role { return "" }

// TextContent implements Item.
func (f *FunctionCall) TextContent() string { return "" }

// FunctionCallOutput records the result returned by a tool.
type FunctionCallOutput struct {
	ID        string
	CallID    string
	Name      string
	Output    string
	IsError   bool
	CreatedAt time.Time
}

// ItemType implements Item.
func (f *FunctionCallOutput) ItemType() ItemType { return ItemFunctionCallOutput }

// ItemRole implements Item.
func (f *FunctionCallOutput) ItemRole() Role { return "" }

// TextContent implements Item. Tool output is not conversational text.
func (f *FunctionCallOutput) TextContent() string { return "" }

// Record is a flat, JSON-friendly Item used by hosts that ship history
// over the wire.
type Record struct {
	Type    ItemType `json:"type"`
	Role    Role     `json:"role,omitempty"`
	Content string   `json:"content,omitempty"`
}

// ItemType implements Item.
func (r Record) ItemType() ItemType { return r.Type }

// ItemRole implements Item.
func (r Record) ItemRole() Role {
	if r.Type != ItemMessage {
		return ""
	}
	return r.Role
}

// TextContent implements Item.
func (r Record) TextContent() string {
	if r.Type != ItemMessage {
		return ""
	}
	return r.Content
}

// Records converts wire records into history items.
func Records(records []Record) []Item {
	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = r
	}
	return items
}

var (
	_ Item = (*Message)(nil)
	_ Item = (*FunctionCall)(nil)
	_ Item = (*FunctionCallOutput)(nil)
	_ Item = Record{}
)
