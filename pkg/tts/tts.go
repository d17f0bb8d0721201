// Package tts provides text-to-speech synthesis.
//
// Providers return raw PCM plus the MIME hint reported by the service
// (e.g. "audio/pcm;rate=24000"); container encoding is the caller's
// concern (see pkg/audio).
package tts

import "context"

// Synthesizer converts text to speech audio.
type Synthesizer interface {
	// Synthesize converts text to audio, returning the complete
	// audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// AudioResult represents a complete synthesis result.
type AudioResult struct {
	// PCM contains raw linear PCM bytes (mono, 16-bit, little-endian).
	PCM []byte

	// MIMEType is the provider's hint for the PCM framing, typically
	// carrying a rate= parameter.
	MIMEType string

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the provider round-trip time in milliseconds.
	LatencyMs int64
}
