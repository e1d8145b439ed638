// Package speech voices assistant replies.
//
// A Relay asks a Responder for the next turn and, when a synthesizer is
// configured, turns it into audio. Synthesis is best effort: on failure the
// text is still returned and the error is logged.
package speech

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/teslashibe/go-voicebridge/pkg/assistant"
	"github.com/teslashibe/go-voicebridge/pkg/conversation"
	"github.com/teslashibe/go-voicebridge/pkg/tts"
)

// Utterance is a reply ready to be played.
type Utterance struct {
	Text    string
	Audio   *tts.AudioResult // nil when not voiced
	Outcome assistant.Outcome
}

// Voiced reports whether audio is attached.
func (u Utterance) Voiced() bool {
	return u.Audio != nil && len(u.Audio.Audio) > 0
}

// Relay couples a Responder with an optional synthesizer.
type Relay struct {
	responder assistant.Responder
	voice     tts.Provider
	logger    *slog.Logger

	voiced   atomic.Uint64
	failures atomic.Uint64
}

// NewRelay creates a Relay. A nil voice makes it text-only.
func NewRelay(responder assistant.Responder, voice tts.Provider, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		responder: responder,
		voice:     voice,
		logger:    logger.With("component", "speech.relay"),
	}
}

// Respond produces the next reply for history and voices it when speak is set.
func (r *Relay) Respond(ctx context.Context, history []conversation.Item, speak bool) Utterance {
	out := r.responder.Turn(ctx, history)
	u := Utterance{Text: out.Text, Outcome: out}
	if speak {
		u.Audio = r.synthesize(ctx, out.Text)
	}
	return u
}

// Say voices text as is.
func (r *Relay) Say(ctx context.Context, text string) Utterance {
	return Utterance{Text: text, Audio: r.synthesize(ctx, text)}
}

func (r *Relay) synthesize(ctx context.Context, text string) *tts.AudioResult {
	if r.voice == nil {
		return nil
	}

	audio, err := r.voice.Synthesize(ctx, text)
	if err != nil {
		r.failures.Add(1)
		r.logger.Warn("synthesis failed, returning text only", "error", err, "chars", len(text))
		return nil
	}

	r.voiced.Add(1)
	return audio
}

// CanSpeak reports whether a synthesizer is configured.
func (r *Relay) CanSpeak() bool {
	return r.voice != nil
}

// Voiced returns how many replies were synthesized.
func (r *Relay) Voiced() uint64 {
	return r.voiced.Load()
}

// Failures returns how many syntheses failed.
func (r *Relay) Failures() uint64 {
	return r.failures.Load()
}
