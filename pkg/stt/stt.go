// Package stt provides speech-to-text transcription for uploaded
// audio clips.
package stt

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
)

// DefaultMIMEType is assumed when neither an explicit MIME type nor a
// recognizable filename extension is available.
const DefaultMIMEType = "audio/wav"

// Transcriber converts an audio clip to text.
type Transcriber interface {
	// Transcribe returns the transcript of the request's audio.
	Transcribe(ctx context.Context, req *Request) (*Result, error)

	// Close releases any resources held by the transcriber.
	Close() error
}

// Request is a single transcription job.
type Request struct {
	// Audio is the raw uploaded audio (WAV, MP3, M4A, OGG, ...).
	Audio []byte

	// Filename, when present, is used to guess the MIME type.
	Filename string

	// MIMEType, when present, overrides filename-based detection.
	MIMEType string

	// Instruction overrides the transcriber's default instruction.
	Instruction string
}

// Result is a completed transcription.
type Result struct {
	// Text is the transcript, trimmed.
	Text string

	// MIMEType is the type the audio was submitted as.
	MIMEType string

	// LatencyMs is the provider round-trip time in milliseconds.
	LatencyMs int64
}

// audioExtensions maps common robot-upload extensions that Go's
// builtin MIME table does not cover reliably.
var audioExtensions = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".webm": "audio/webm",
}

// ResolveMIMEType picks the MIME type for an upload: explicit type
// first, then the filename extension, then DefaultMIMEType.
func ResolveMIMEType(explicit, filename string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if mt, ok := audioExtensions[ext]; ok {
		return mt
	}
	if guessed := mime.TypeByExtension(ext); guessed != "" {
		return guessed
	}
	return DefaultMIMEType
}
