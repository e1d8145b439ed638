// Package events fans session activity out to WebSocket observers.
//
// A Hub owns the set of subscribers. Publishing never blocks: events are
// dropped when the hub is saturated, and a subscriber whose buffer fills up
// is disconnected.
package events

import (
	"encoding/json"
	"time"
)

// Type names an event.
type Type string

const (
	TypeOpened Type = "session.opened"
	TypeEnded  Type = "session.ended"
	TypeTurn   Type = "session.turn"
)

// Event is one session activity record as sent to observers.
type Event struct {
	Type           Type      `json:"type"`
	Room           string    `json:"room"`
	Time           time.Time `json:"time"`
	Text           string    `json:"text,omitempty"`
	Kind           string    `json:"kind,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Greeted        bool      `json:"greeted,omitempty"`
	Voiced         bool      `json:"voiced,omitempty"`
}

func (e Event) encode() ([]byte, error) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	return json.Marshal(e)
}
