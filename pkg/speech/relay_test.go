package speech

import (
	"context"
	"errors"
	"testing"

	"github.com/teslashibe/go-voicebridge/pkg/assistant"
	"github.com/teslashibe/go-voicebridge/pkg/chatbase"
	"github.com/teslashibe/go-voicebridge/pkg/conversation"
	"github.com/teslashibe/go-voicebridge/pkg/tts"
)

func history(text string) []conversation.Item {
	return []conversation.Item{&conversation.Message{Role: conversation.RoleUser, Content: []string{text}}}
}

func TestRelayVoicesReply(t *testing.T) {
	voice := tts.NewMock()
	relay := NewRelay(assistant.New(chatbase.NewMock()), voice, nil)

	u := relay.Respond(context.Background(), history("hi"), true)
	if u.Text != "echo: hi" {
		t.Errorf("Text = %q", u.Text)
	}
	if !u.Voiced() {
		t.Error("expected audio")
	}
	if voice.CallCount("Synthesize") != 1 || voice.Calls()[0].Text != "echo: hi" {
		t.Errorf("calls = %+v", voice.Calls())
	}
	if relay.Voiced() != 1 {
		t.Errorf("Voiced() = %d", relay.Voiced())
	}
}

func TestRelayTextOnly(t *testing.T) {
	voice := tts.NewMock()
	relay := NewRelay(assistant.New(chatbase.NewMock()), voice, nil)

	u := relay.Respond(context.Background(), nil, false)
	if u.Text != assistant.Greeting || u.Voiced() {
		t.Errorf("Utterance = %+v, want unvoiced greeting", u)
	}
	if voice.CallCount("Synthesize") != 0 {
		t.Error("synthesizer should not be called")
	}

	noVoice := NewRelay(assistant.New(chatbase.NewMock()), nil, nil)
	if noVoice.CanSpeak() {
		t.Error("CanSpeak() = true without a provider")
	}
	if u := noVoice.Say(context.Background(), "hi"); u.Voiced() {
		t.Error("expected no audio without a provider")
	}
}

func TestRelayKeepsTextWhenSynthesisFails(t *testing.T) {
	relay := NewRelay(assistant.New(chatbase.NewMock()), tts.MockError(errors.New("quota")), nil)

	u := relay.Respond(context.Background(), history("hi"), true)
	if u.Text != "echo: hi" {
		t.Errorf("Text = %q", u.Text)
	}
	if u.Voiced() {
		t.Error("expected no audio")
	}
	if relay.Failures() != 1 {
		t.Errorf("Failures() = %d, want 1", relay.Failures())
	}
}

func TestRelaySpeaksFallback(t *testing.T) {
	backend := chatbase.MockReply(chatbase.Reply{Kind: chatbase.KindTransportFailure})
	relay := NewRelay(assistant.New(backend), tts.NewMock(), nil)

	u := relay.Respond(context.Background(), history("hi"), true)
	if u.Text != chatbase.FallbackUnavailable || !u.Voiced() {
		t.Errorf("Utterance = %+v, want voiced fallback", u)
	}
}

type scriptedResponder struct {
	out   assistant.Outcome
	calls int
}

func (s *scriptedResponder) Turn(context.Context, []conversation.Item) assistant.Outcome {
	s.calls++
	return s.out
}

func TestRelayCarriesOutcome(t *testing.T) {
	responder := &scriptedResponder{out: assistant.Outcome{
		Text:           chatbase.FallbackInvalid,
		Kind:           chatbase.KindMalformedResponse,
		ConversationID: "conv-9",
	}}
	relay := NewRelay(responder, nil, nil)

	u := relay.Respond(context.Background(), history("hi"), true)
	if responder.calls != 1 {
		t.Fatalf("Turn calls = %d, want 1", responder.calls)
	}
	if u.Text != chatbase.FallbackInvalid || u.Voiced() {
		t.Errorf("Utterance = %+v", u)
	}
	if u.Outcome.Kind != chatbase.KindMalformedResponse || u.Outcome.ConversationID != "conv-9" {
		t.Errorf("Outcome = %+v", u.Outcome)
	}
}
