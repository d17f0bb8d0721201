package stt

import (
	"context"
	"sync"
)

// Mock implements Transcriber for testing.
type Mock struct {
	// TranscribeFunc is called when Transcribe is invoked.
	// If nil, returns a canned transcript.
	TranscribeFunc func(ctx context.Context, req *Request) (*Result, error)

	mu    sync.Mutex
	calls []*Request
}

// NewMock creates a mock transcriber returning the given transcript.
// Empty audio is still rejected, matching the real client.
func NewMock(transcript string) *Mock {
	return &Mock{
		TranscribeFunc: func(ctx context.Context, req *Request) (*Result, error) {
			return &Result{
				Text:     transcript,
				MIMEType: ResolveMIMEType(req.MIMEType, req.Filename),
			}, nil
		},
	}
}

// MockWithError returns a mock whose calls always fail with err.
func MockWithError(err error) *Mock {
	return &Mock{
		TranscribeFunc: func(ctx context.Context, req *Request) (*Result, error) {
			return nil, err
		},
	}
}

// Transcribe records the call and delegates to TranscribeFunc.
func (m *Mock) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if len(req.Audio) == 0 {
		return nil, WrapError("mock", ErrEmptyAudio)
	}
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, req)
	}
	return nil, WrapError("mock", ErrNoTranscript)
}

// Close returns nil.
func (m *Mock) Close() error {
	return nil
}

// Calls returns all recorded requests.
func (m *Mock) Calls() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*Request, len(m.calls))
	copy(result, m.calls)
	return result
}

// Verify Mock implements Transcriber at compile time.
var _ Transcriber = (*Mock)(nil)
