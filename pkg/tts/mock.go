package tts

import (
	"context"
	"strings"
	"sync"
)

// Mock is a synthesizer for testing.
type Mock struct {
	mu    sync.Mutex
	calls []string

	// SynthesizeFunc is called by Synthesize if set.
	SynthesizeFunc func(ctx context.Context, text string) (*AudioResult, error)
}

// NewMock creates a mock that returns the given PCM with the default
// 24 kHz MIME hint.
func NewMock(pcm []byte) *Mock {
	return &Mock{
		SynthesizeFunc: func(_ context.Context, text string) (*AudioResult, error) {
			return &AudioResult{
				PCM:       pcm,
				MIMEType:  "audio/pcm;rate=24000",
				CharCount: len(text),
			}, nil
		},
	}
}

// MockWithError creates a mock that always returns err.
func MockWithError(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(context.Context, string) (*AudioResult, error) {
			return nil, err
		},
	}
}

// Synthesize implements Synthesizer.
func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return &AudioResult{PCM: []byte{0, 0}, MIMEType: "audio/pcm;rate=24000", CharCount: len(text)}, nil
}

// Close implements Synthesizer.
func (m *Mock) Close() error {
	return nil
}

// Calls returns the texts passed to Synthesize.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

var _ Synthesizer = (*Mock)(nil)
