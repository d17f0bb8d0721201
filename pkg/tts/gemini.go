package tts

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

// Defaults for the Gemini TTS synthesizer.
const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.5-flash-preview-tts"
)

// Gemini synthesizes speech through the Gemini generateContent API
// with audio response modality.
type Gemini struct {
	baseURL    string
	apiKey     string
	model      string
	voice      string
	httpClient *http.Client
	logger     *slog.Logger
}

// GeminiOption configures a Gemini synthesizer.
type GeminiOption func(*Gemini)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) GeminiOption {
	return func(g *Gemini) {
		g.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the TTS model.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		g.model = model
	}
}

// WithVoice sets the prebuilt voice name. Empty leaves voice selection
// to the provider.
func WithVoice(voice string) GeminiOption {
	return func(g *Gemini) {
		g.voice = voice
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(g *Gemini) {
		g.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) GeminiOption {
	return func(g *Gemini) {
		g.logger = logger
	}
}

// NewGemini creates a Gemini TTS synthesizer.
func NewGemini(apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	g := &Gemini{
		baseURL:    DefaultGeminiBaseURL,
		apiKey:     apiKey,
		model:      DefaultGeminiModel,
		httpClient: httpc.Client,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

type geminiTTSResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData struct {
					MIMEType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Synthesize implements Synthesizer.
func (g *Gemini) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()

	generationConfig := map[string]any{
		"responseModalities": []string{"AUDIO"},
	}
	if g.voice != "" {
		generationConfig["speechConfig"] = map[string]any{
			"voiceConfig": map[string]any{
				"prebuiltVoiceConfig": map[string]any{
					"voiceName": g.voice,
				},
			},
		}
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": text},
				},
			},
		},
		"generationConfig": generationConfig,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerGemini, "marshal request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerGemini, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, WrapError(providerGemini, "do request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(providerGemini, "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, g.parseError(resp.StatusCode, respBody)
	}

	var out geminiTTSResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, WrapError(providerGemini, "decode response", err)
	}

	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData.Data == "" {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, WrapError(providerGemini, "decode audio", err)
			}
			if len(pcm) == 0 {
				continue
			}
			return &AudioResult{
				PCM:       pcm,
				MIMEType:  part.InlineData.MIMEType,
				CharCount: len(text),
				LatencyMs: time.Since(start).Milliseconds(),
			}, nil
		}
	}
	return nil, ErrNoAudio
}

func (g *Gemini) parseError(status int, body []byte) error {
	var out geminiTTSResponse
	apiErr := &APIError{StatusCode: status, Provider: providerGemini}
	if err := json.Unmarshal(body, &out); err == nil && out.Error != nil {
		apiErr.Message = out.Error.Message
		apiErr.Code = out.Error.Status
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// Close implements Synthesizer.
func (g *Gemini) Close() error {
	return nil
}

var _ Synthesizer = (*Gemini)(nil)
