package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MarceloCamachh/chapi/internal/httpc"
)

const providerGemini = "gemini"

// DefaultInstruction asks for a verbatim Spanish transcript with no
// commentary.
const DefaultInstruction = "Transcribe el audio exactamente en español, sin comentarios adicionales."

// Gemini transcribes audio with a multimodal Gemini model: the clip is
// sent inline next to a transcription instruction.
type Gemini struct {
	apiKey      string
	baseURL     string
	model       string
	instruction string
	http        *http.Client
	logger      *slog.Logger
}

// GeminiOption configures the Gemini transcriber.
type GeminiOption func(*Gemini)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) GeminiOption {
	return func(g *Gemini) { g.baseURL = strings.TrimSuffix(url, "/") }
}

// WithModel sets the transcription model.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) { g.model = model }
}

// WithInstruction sets the default transcription instruction.
func WithInstruction(instruction string) GeminiOption {
	return func(g *Gemini) { g.instruction = instruction }
}

// WithHTTPClient overrides the HTTP client used for outbound calls.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(g *Gemini) { g.http = client }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) GeminiOption {
	return func(g *Gemini) { g.logger = l.With("component", "stt.gemini") }
}

// NewGemini creates a Gemini transcriber. Fails fast when the API key
// is missing.
func NewGemini(apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, WrapError(providerGemini, ErrNoAPIKey)
	}
	g := &Gemini{
		apiKey:      apiKey,
		baseURL:     "https://generativelanguage.googleapis.com/v1beta",
		model:       "gemini-2.5-flash",
		instruction: DefaultInstruction,
		http:        httpc.Client,
		logger:      slog.Default().With("component", "stt.gemini"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Transcribe submits the clip and returns its transcript. Empty audio
// is rejected before any external call.
func (g *Gemini) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	if len(req.Audio) == 0 {
		return nil, WrapError(providerGemini, ErrEmptyAudio)
	}
	start := time.Now()

	mimeType := ResolveMIMEType(req.MIMEType, req.Filename)
	instruction := req.Instruction
	if instruction == "" {
		instruction = g.instruction
	}

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": instruction},
					{
						"inline_data": map[string]string{
							"mime_type": mimeType,
							"data":      base64.StdEncoding.EncodeToString(req.Audio),
						},
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseModalities": []string{"TEXT"},
			"temperature":        0,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerGemini, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerGemini, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return nil, WrapError(providerGemini, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, g.parseError(resp)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("decode response: %w", err))
	}

	text := ""
	for _, cand := range result.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				text = strings.TrimSpace(part.Text)
				break
			}
		}
		if text != "" {
			break
		}
	}
	if text == "" {
		return nil, WrapError(providerGemini, ErrNoTranscript)
	}

	latency := time.Since(start).Milliseconds()
	g.logger.Debug("transcribed audio",
		"bytes", len(req.Audio),
		"mime", mimeType,
		"latency_ms", latency,
	)

	return &Result{
		Text:      text,
		MIMEType:  mimeType,
		LatencyMs: latency,
	}, nil
}

// Close releases resources.
func (g *Gemini) Close() error {
	g.http.CloseIdleConnections()
	return nil
}

// parseError reads and parses an error response.
func (g *Gemini) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	message := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerGemini,
	}
}

// Verify Gemini implements Transcriber at compile time.
var _ Transcriber = (*Gemini)(nil)
