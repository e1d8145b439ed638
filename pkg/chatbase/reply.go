package chatbase

import (
	"encoding/json"
	"strings"
	"time"
)

// Fallback utterances spoken instead of surfacing an error.
const (
	FallbackUnavailable = "I am having trouble reaching the chatbot backend right now. Please try again."
	FallbackInvalid     = "I could not generate a valid response right now. Please try again."
)

// Kind classifies the outcome of one backend call.
type Kind string

const (
	KindOK                Kind = "ok"
	KindTransportFailure  Kind = "transport_failure"
	KindBackendError      Kind = "backend_error"
	KindMalformedResponse Kind = "malformed_response"
)

// Kinds lists every outcome in a stable order.
var Kinds = []Kind{KindOK, KindTransportFailure, KindBackendError, KindMalformedResponse}

// Reply is the result of one backend call. It is never an error from the
// caller's point of view: Utterance always yields something to speak.
type Reply struct {
	Kind Kind

	// Text is the trimmed backend text, set only when Kind is KindOK.
	Text string

	// ConversationID is the trimmed id returned by the backend, if any.
	ConversationID string

	// Status is the HTTP status code, 0 when no response was received.
	Status int

	// Err describes the failure for logging.
	Err error

	Latency time.Duration
}

// OK reports whether the backend produced usable text.
func (r Reply) OK() bool {
	return r.Kind == KindOK
}

// Utterance returns the text to speak: the reply text or the matching fallback.
func (r Reply) Utterance() string {
	switch r.Kind {
	case KindOK:
		return r.Text
	case KindMalformedResponse:
		return FallbackInvalid
	default:
		return FallbackUnavailable
	}
}

// Decode validates a success response body.
//
// A body that is not a JSON object is a transport failure. A conversationId
// is picked up from any object, even one without usable text.
func Decode(raw []byte) Reply {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		if err == nil {
			err = errNotObject
		}
		return Reply{
			Kind: KindTransportFailure,
			Err:  &DecodeError{Body: truncate(string(raw), MaxErrorBody), Err: err},
		}
	}

	var reply Reply
	if id, ok := payload["conversationId"].(string); ok {
		reply.ConversationID = strings.TrimSpace(id)
	}

	text, ok := payload["text"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		reply.Kind = KindMalformedResponse
		reply.Err = &MalformedError{Payload: payload}
		return reply
	}

	reply.Kind = KindOK
	reply.Text = strings.TrimSpace(text)
	return reply
}
