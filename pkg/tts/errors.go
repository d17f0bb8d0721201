package tts

import (
	"errors"
	"fmt"
)

// Common errors returned by synthesizers.
var (
	// ErrNoAPIKey is returned when the synthesizer is created without
	// an API key.
	ErrNoAPIKey = errors.New("tts: no API key provided")

	// ErrEmptyText is returned when asked to synthesize empty text.
	ErrEmptyText = errors.New("tts: empty text")

	// ErrNoAudio is returned when the provider response carries no
	// audio payload.
	ErrNoAudio = errors.New("tts: no audio in response")
)

// APIError represents an error returned by a TTS API.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	Provider   string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tts: %s API error (status %d, code %s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("tts: %s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsRateLimited reports whether the error is due to rate limiting.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsUnauthorized reports whether the error is due to invalid credentials.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsServerError reports whether the error is a provider-side failure.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// ProviderError wraps a lower-level error with provider context.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("tts: %s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider and operation context.
func WrapError(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Op: op, Err: err}
}
