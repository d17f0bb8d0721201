package web

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/MarceloCamachh/chapi/internal/log"
	"github.com/MarceloCamachh/chapi/pkg/hub"
	"github.com/MarceloCamachh/chapi/pkg/inference"
	"github.com/MarceloCamachh/chapi/pkg/stt"
	"github.com/MarceloCamachh/chapi/pkg/tts"
	"github.com/MarceloCamachh/chapi/pkg/voice"
)

// TextRequest is the body of POST /api/text.
type TextRequest struct {
	Message   string           `json:"message"`
	History   []HistoryMessage `json:"history,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
}

// HistoryMessage is one prior turn supplied by the client.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TextResponse is the body of a successful POST /api/text.
type TextResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleText(c *fiber.Ctx) error {
	var req TextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}

	history := make([]inference.Message, 0, len(req.History))
	for _, m := range req.History {
		switch m.Role {
		case "assistant", "model":
			history = append(history, inference.NewAssistantMessage(m.Content))
		default:
			history = append(history, inference.NewUserMessage(m.Content))
		}
	}

	out, err := s.pipeline.TextTurn(c.UserContext(), &voice.TurnRequest{
		Message:   req.Message,
		History:   history,
		SessionID: req.SessionID,
	})
	if err != nil {
		return s.fail(c, "text", err)
	}

	s.countTurn("text", "ok")
	return c.JSON(TextResponse{Reply: out})
}

func (s *Server) handleVoice(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing audio file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable audio file"})
	}
	defer file.Close()

	audioData, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable audio file"})
	}

	res, err := s.pipeline.VoiceTurn(
		c.UserContext(),
		audioData,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		c.FormValue("session_id"),
	)
	if err != nil {
		return s.fail(c, "voice", err)
	}

	s.countTurn("voice", "ok")
	c.Set(fiber.HeaderContentType, "audio/wav")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reply.wav"`)
	return c.Send(res.WAV)
}

// handleConversationWS registers an observer on the conversation hub.
func (s *Server) handleConversationWS(c *websocket.Conn) {
	if s.hub == nil {
		c.Close()
		return
	}
	client := hub.NewClient(s.hub, c)
	client.Run()
}

// fail maps a pipeline error onto an HTTP status and logs it.
func (s *Server) fail(c *fiber.Ctx, endpoint string, err error) error {
	status := statusForError(err)
	outcome := "upstream_error"
	if status == fiber.StatusBadRequest {
		outcome = "invalid_input"
	} else if status == fiber.StatusInternalServerError {
		outcome = "internal_error"
	}
	s.countTurn(endpoint, outcome)

	log.Error("turn failed",
		"endpoint", endpoint,
		"status", status,
		"request_id", c.Locals("request_id"),
		"error", err,
	)
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// statusForError classifies pipeline errors: caller mistakes are 400,
// provider failures are 502, everything else is 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, voice.ErrEmptyMessage),
		errors.Is(err, stt.ErrEmptyAudio),
		errors.Is(err, tts.ErrEmptyText):
		return fiber.StatusBadRequest
	case errors.Is(err, inference.ErrEmptyReply),
		errors.Is(err, stt.ErrNoTranscript),
		errors.Is(err, tts.ErrNoAudio):
		return fiber.StatusBadGateway
	}

	var infErr *inference.APIError
	var sttErr *stt.APIError
	var ttsErr *tts.APIError
	if errors.As(err, &infErr) || errors.As(err, &sttErr) || errors.As(err, &ttsErr) {
		return fiber.StatusBadGateway
	}

	var infProv *inference.ProviderError
	var sttProv *stt.ProviderError
	var ttsProv *tts.ProviderError
	if errors.As(err, &infProv) || errors.As(err, &sttProv) || errors.As(err, &ttsProv) {
		return fiber.StatusBadGateway
	}

	return fiber.StatusInternalServerError
}

func (s *Server) countTurn(endpoint, outcome string) {
	if s.metrics != nil {
		s.metrics.Turns.WithLabelValues(endpoint, outcome).Inc()
	}
}
