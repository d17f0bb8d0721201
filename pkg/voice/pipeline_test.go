package voice

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/MarceloCamachh/chapi/pkg/inference"
	"github.com/MarceloCamachh/chapi/pkg/reply"
	"github.com/MarceloCamachh/chapi/pkg/stt"
	"github.com/MarceloCamachh/chapi/pkg/tts"
)

func newTestPipeline(chat inference.Provider, opts ...Option) *Pipeline {
	return New(chat, chat, stt.NewMock("hola chapi"), tts.NewMock([]byte{1, 2, 3, 4}), reply.NewGate(""), opts...)
}

func TestTextTurnGreetsFirstTurnOnly(t *testing.T) {
	chat := inference.NewMock("Estoy aquí para ti.")
	p := newTestPipeline(chat)

	first, err := p.TextTurn(context.Background(), &TurnRequest{Message: "hola", SessionID: "s1"})
	if err != nil {
		t.Fatalf("TextTurn failed: %v", err)
	}
	want := reply.DefaultGreeting + " Estoy aquí para ti."
	if first != want {
		t.Errorf("expected %q, got %q", want, first)
	}

	second, err := p.TextTurn(context.Background(), &TurnRequest{Message: "gracias", SessionID: "s1"})
	if err != nil {
		t.Fatalf("TextTurn failed: %v", err)
	}
	if second != "Estoy aquí para ti." {
		t.Errorf("second turn should not greet, got %q", second)
	}
}

func TestTextTurnHistorySkipsGreeting(t *testing.T) {
	chat := inference.NewMock("Claro que sí.")
	p := newTestPipeline(chat)

	out, err := p.TextTurn(context.Background(), &TurnRequest{
		Message:   "y ahora?",
		History:   []inference.Message{inference.NewUserMessage("hola"), inference.NewAssistantMessage("hola!")},
		SessionID: "s2",
	})
	if err != nil {
		t.Fatalf("TextTurn failed: %v", err)
	}
	if out != "Claro que sí." {
		t.Errorf("history turn should not greet, got %q", out)
	}

	// The session was not consumed by the history turn.
	out, err = p.TextTurn(context.Background(), &TurnRequest{Message: "hola", SessionID: "s2"})
	if err != nil {
		t.Fatalf("TextTurn failed: %v", err)
	}
	if !strings.HasPrefix(out, reply.DefaultGreeting) {
		t.Errorf("first history-free turn should greet, got %q", out)
	}
}

func TestTextTurnNormalizesReply(t *testing.T) {
	chat := inference.NewMock("**Hola**\n\nestoy bien 😀")
	p := newTestPipeline(chat)

	out, err := p.TextTurn(context.Background(), &TurnRequest{
		Message:   "como estas",
		History:   []inference.Message{inference.NewUserMessage("hola")},
		SessionID: "s3",
	})
	if err != nil {
		t.Fatalf("TextTurn failed: %v", err)
	}
	if out != "Hola estoy bien" {
		t.Errorf("expected normalized reply, got %q", out)
	}
}

func TestTextTurnEmptyMessage(t *testing.T) {
	p := newTestPipeline(inference.NewMock("x"))
	if _, err := p.TextTurn(context.Background(), &TurnRequest{Message: "  "}); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestTextTurnSystemPromptAndHistory(t *testing.T) {
	chat := inference.NewMock("ok")
	p := newTestPipeline(chat, WithSystemPrompt("Eres Chapi."))

	history := []inference.Message{inference.NewUserMessage("hola"), inference.NewAssistantMessage("hola!")}
	if _, err := p.TextTurn(context.Background(), &TurnRequest{Message: "sigue", History: history, SessionID: "s4"}); err != nil {
		t.Fatalf("TextTurn failed: %v", err)
	}

	call := chat.LastCall()
	if call == nil {
		t.Fatal("expected a chat call")
	}
	if len(call.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(call.Messages))
	}
	if call.Messages[0].Role != inference.RoleSystem || call.Messages[0].Content != "Eres Chapi." {
		t.Errorf("expected system message first, got %+v", call.Messages[0])
	}
	if call.Messages[3].Content != "sigue" {
		t.Errorf("expected user message last, got %+v", call.Messages[3])
	}
	if call.User != "s4" {
		t.Errorf("expected session forwarded as user tag, got %q", call.User)
	}
}

func TestTextTurnChatError(t *testing.T) {
	wantErr := &inference.APIError{StatusCode: 500, Provider: "client", Message: "boom"}
	p := newTestPipeline(inference.MockWithError(wantErr))

	_, err := p.TextTurn(context.Background(), &TurnRequest{Message: "hola", SessionID: "s5"})
	var apiErr *inference.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestVoiceTurn(t *testing.T) {
	chat := inference.NewMock("Te escucho.")
	p := newTestPipeline(chat)

	res, err := p.VoiceTurn(context.Background(), []byte{9, 9, 9}, "clip.wav", "", "v1")
	if err != nil {
		t.Fatalf("VoiceTurn failed: %v", err)
	}

	if res.Transcript != "hola chapi" {
		t.Errorf("unexpected transcript %q", res.Transcript)
	}
	if res.Reply != reply.DefaultGreeting+" Te escucho." {
		t.Errorf("unexpected reply %q", res.Reply)
	}

	call := chat.LastCall()
	if call == nil {
		t.Fatal("expected a chat call")
	}
	if got := call.Messages[len(call.Messages)-1].Content; got != "hola chapi" {
		t.Errorf("expected transcript forwarded to chat, got %q", got)
	}

	// Complete WAV: 44-byte header plus the mock's 4 PCM bytes.
	if len(res.WAV) != 48 {
		t.Fatalf("expected 48 bytes of WAV, got %d", len(res.WAV))
	}
	if string(res.WAV[0:4]) != "RIFF" || string(res.WAV[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(res.WAV[24:28]); rate != 24000 {
		t.Errorf("expected 24000 Hz from the mock's mime hint, got %d", rate)
	}
}

func TestVoiceTurnEmptyAudio(t *testing.T) {
	p := newTestPipeline(inference.NewMock("x"))
	if _, err := p.VoiceTurn(context.Background(), nil, "clip.wav", "", ""); !errors.Is(err, stt.ErrEmptyAudio) {
		t.Errorf("expected ErrEmptyAudio, got %v", err)
	}
}

func TestVoiceTurnTranscribeError(t *testing.T) {
	p := New(inference.NewMock("x"), inference.NewMock("x"),
		stt.MockWithError(stt.ErrNoTranscript), tts.NewMock(nil), reply.NewGate(""))

	if _, err := p.VoiceTurn(context.Background(), []byte{1}, "clip.wav", "", ""); !errors.Is(err, stt.ErrNoTranscript) {
		t.Errorf("expected ErrNoTranscript, got %v", err)
	}
}

func TestVoiceTurnSynthesizeError(t *testing.T) {
	p := New(inference.NewMock("hola"), inference.NewMock("hola"),
		stt.NewMock("hola"), tts.MockWithError(tts.ErrNoAudio), reply.NewGate(""))

	if _, err := p.VoiceTurn(context.Background(), []byte{1}, "clip.wav", "", ""); !errors.Is(err, tts.ErrNoAudio) {
		t.Errorf("expected ErrNoAudio, got %v", err)
	}
}
