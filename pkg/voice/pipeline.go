// Package voice orchestrates the conversation pipeline: transcription,
// chat inference, reply normalization, greeting, and speech synthesis.
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarceloCamachh/chapi/internal/observability"
	"github.com/MarceloCamachh/chapi/pkg/audio"
	"github.com/MarceloCamachh/chapi/pkg/hub"
	"github.com/MarceloCamachh/chapi/pkg/inference"
	"github.com/MarceloCamachh/chapi/pkg/reply"
	"github.com/MarceloCamachh/chapi/pkg/stt"
	"github.com/MarceloCamachh/chapi/pkg/tts"
)

// ErrEmptyMessage is returned when a text turn carries no message.
var ErrEmptyMessage = errors.New("voice: empty message")

// Pipeline wires the external services into the two conversation
// flows. All dependencies are injected; construct once at startup.
type Pipeline struct {
	textChat  inference.Provider
	voiceChat inference.Provider
	stt       stt.Transcriber
	tts       tts.Synthesizer
	gate      *reply.Gate

	systemPrompt string
	hub          *hub.Hub
	metrics      *observability.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSystemPrompt sets the system message prepended to every chat
// request. Empty means no system message.
func WithSystemPrompt(prompt string) Option {
	return func(p *Pipeline) {
		p.systemPrompt = strings.TrimSpace(prompt)
	}
}

// WithHub sets the conversation hub; turns are broadcast to observers
// when present.
func WithHub(h *hub.Hub) Option {
	return func(p *Pipeline) {
		p.hub = h
	}
}

// WithMetrics sets the Prometheus instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New creates a Pipeline. The text flow uses textChat, the voice flow
// uses voiceChat; passing the same provider for both is fine.
func New(textChat, voiceChat inference.Provider, transcriber stt.Transcriber, synthesizer tts.Synthesizer, gate *reply.Gate, opts ...Option) *Pipeline {
	p := &Pipeline{
		textChat:  textChat,
		voiceChat: voiceChat,
		stt:       transcriber,
		tts:       synthesizer,
		gate:      gate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TurnRequest is one text turn from a client.
type TurnRequest struct {
	// Message is the user's utterance.
	Message string

	// History is the prior conversation, oldest first. The gate treats
	// any non-empty history as an already-greeted conversation.
	History []inference.Message

	// SessionID identifies the conversation; empty selects the shared
	// default session.
	SessionID string
}

// VoiceResult is a completed voice turn.
type VoiceResult struct {
	// WAV is the synthesized reply as a complete WAV file.
	WAV []byte

	// Transcript is what the user was heard to say.
	Transcript string

	// Reply is the normalized assistant reply that was spoken.
	Reply string
}

// TextTurn runs one turn of the text flow and returns the normalized,
// possibly greeting-prefixed reply.
func (p *Pipeline) TextTurn(ctx context.Context, req *TurnRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	messages := p.buildMessages(req.History, message)

	chatStart := time.Now()
	resp, err := p.textChat.Chat(ctx, &inference.ChatRequest{
		Messages: messages,
		User:     req.SessionID,
	})
	if err != nil {
		p.countProviderError("chat", "text")
		return "", fmt.Errorf("chat: %w", err)
	}
	p.observeStage("chat", time.Since(chatStart))

	out := reply.Normalize(resp.Message.Content)
	if p.gate.ShouldGreet(historyContents(req.History), req.SessionID) {
		out = p.gate.Apply(out)
	}

	p.broadcast("user", req.SessionID, message)
	p.broadcast("assistant", req.SessionID, out)
	return out, nil
}

// VoiceTurn runs one turn of the voice flow: transcribe the upload,
// chat, normalize, greet, synthesize, and package the reply as WAV.
// Voice turns carry no history, so sessions greet on their first turn.
func (p *Pipeline) VoiceTurn(ctx context.Context, audioData []byte, filename, mimeType, sessionID string) (*VoiceResult, error) {
	if len(audioData) == 0 {
		return nil, stt.ErrEmptyAudio
	}

	sttStart := time.Now()
	transcript, err := p.stt.Transcribe(ctx, &stt.Request{
		Audio:    audioData,
		Filename: filename,
		MIMEType: mimeType,
	})
	if err != nil {
		p.countProviderError("stt", "voice")
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	p.observeStage("stt", time.Since(sttStart))
	p.broadcast("transcript", sessionID, transcript.Text)

	chatStart := time.Now()
	resp, err := p.voiceChat.Chat(ctx, &inference.ChatRequest{
		Messages: p.buildMessages(nil, transcript.Text),
		User:     sessionID,
	})
	if err != nil {
		p.countProviderError("chat", "voice")
		return nil, fmt.Errorf("chat: %w", err)
	}
	p.observeStage("chat", time.Since(chatStart))

	out := reply.Normalize(resp.Message.Content)
	if p.gate.ShouldGreet(nil, sessionID) {
		out = p.gate.Apply(out)
	}
	p.broadcast("assistant", sessionID, out)

	ttsStart := time.Now()
	speech, err := p.tts.Synthesize(ctx, out)
	if err != nil {
		p.countProviderError("tts", "voice")
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	p.observeStage("tts", time.Since(ttsStart))

	wav := audio.EncodeWAVPCM16LE(speech.PCM, audio.SampleRateFromMIME(speech.MIMEType))
	if p.metrics != nil {
		p.metrics.AudioBytesOut.Add(float64(len(wav)))
	}

	return &VoiceResult{WAV: wav, Transcript: transcript.Text, Reply: out}, nil
}

// buildMessages assembles the chat request: optional system message,
// then history, then the current user message.
func (p *Pipeline) buildMessages(history []inference.Message, message string) []inference.Message {
	messages := make([]inference.Message, 0, len(history)+2)
	if p.systemPrompt != "" {
		messages = append(messages, inference.NewSystemMessage(p.systemPrompt))
	}
	messages = append(messages, history...)
	messages = append(messages, inference.NewUserMessage(message))
	return messages
}

func historyContents(history []inference.Message) []string {
	if len(history) == 0 {
		return nil
	}
	out := make([]string, len(history))
	for i, m := range history {
		out[i] = m.Content
	}
	return out
}

func (p *Pipeline) broadcast(kind, sessionID, text string) {
	if p.hub == nil || text == "" {
		return
	}
	p.hub.BroadcastEntry(hub.NewEntry(kind, sessionID, text))
}

func (p *Pipeline) observeStage(stage string, d time.Duration) {
	if p.metrics != nil {
		p.metrics.ObserveStage(stage, d)
	}
}

func (p *Pipeline) countProviderError(stage, flow string) {
	if p.metrics != nil {
		p.metrics.ProviderErrors.WithLabelValues(stage, flow).Inc()
	}
}
