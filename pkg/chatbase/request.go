package chatbase

import "github.com/teslashibe/go-voicebridge/pkg/conversation"

// Request is the chat endpoint request body.
type Request struct {
	ChatbotID      string              `json:"chatbotId"`
	Messages       []conversation.Turn `json:"messages"`
	Stream         bool                `json:"stream"`
	ConversationID string              `json:"conversationId,omitempty"`
}

// NewRequest builds a non-streaming request. An empty conversationID is
// left out of the body.
func NewRequest(chatbotID string, turns []conversation.Turn, conversationID string) Request {
	if turns == nil {
		turns = []conversation.Turn{}
	}
	return Request{
		ChatbotID:      chatbotID,
		Messages:       turns,
		ConversationID: conversationID,
	}
}
