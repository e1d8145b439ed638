// Package tts turns assistant replies into speech.
//
// ElevenLabs is the only provider. The relay in pkg/speech treats synthesis
// as best effort: a failed synthesis never loses the text reply.
//
// Example usage:
//
//	voice, _ := tts.NewElevenLabs(
//	    tts.WithAPIKey(os.Getenv("ELEVEN_API_KEY")),
//	    tts.WithVoice(tts.DefaultVoice),
//	)
//	defer voice.Close()
//
//	result, _ := voice.Synthesize(ctx, "Hello. How can I help you today?")
package tts

import (
	"context"
	"time"
)

// Provider synthesizes speech.
type Provider interface {
	// Synthesize converts text to audio, returning the complete buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult is one synthesized utterance.
type AudioResult struct {
	Audio     []byte
	Format    AudioFormat
	Duration  time.Duration // estimated, PCM only
	CharCount int
	LatencyMs int64
}

// AudioFormat describes the audio encoding.
type AudioFormat struct {
	Encoding   Encoding
	MIMEType   string
	SampleRate int
	Channels   int
}

// Encoding is an ElevenLabs output_format value.
type Encoding string

const (
	EncodingPCM16 Encoding = "pcm_16000"
	EncodingPCM24 Encoding = "pcm_24000"
	EncodingPCM44 Encoding = "pcm_44100"
	EncodingMP3   Encoding = "mp3_44100_128"
	EncodingULaw  Encoding = "ulaw_8000"
)

// SampleRate returns the sample rate implied by the encoding.
func (e Encoding) SampleRate() int {
	switch e {
	case EncodingPCM16:
		return 16000
	case EncodingPCM24:
		return 24000
	case EncodingPCM44, EncodingMP3:
		return 44100
	case EncodingULaw:
		return 8000
	default:
		return 24000
	}
}

// MIMEType returns the content type for the encoding.
func (e Encoding) MIMEType() string {
	switch e {
	case EncodingPCM16, EncodingPCM24, EncodingPCM44:
		return "audio/pcm"
	case EncodingULaw:
		return "audio/basic"
	default:
		return "audio/mpeg"
	}
}

// IsPCM reports whether the encoding is raw 16-bit PCM.
func (e Encoding) IsPCM() bool {
	return e == EncodingPCM16 || e == EncodingPCM24 || e == EncodingPCM44
}

// Format returns the full format description for the encoding.
func (e Encoding) Format() AudioFormat {
	return AudioFormat{
		Encoding:   e,
		MIMEType:   e.MIMEType(),
		SampleRate: e.SampleRate(),
		Channels:   1,
	}
}

// VoiceSettings controls ElevenLabs voice characteristics.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	SpeakerBoost    bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns the settings used when none are given.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		SpeakerBoost:    true,
	}
}
