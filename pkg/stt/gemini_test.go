package stt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		filename string
		want     string
	}{
		{"explicit wins", "audio/mpeg", "clip.wav", "audio/mpeg"},
		{"wav extension", "", "clip.wav", "audio/wav"},
		{"m4a extension", "", "voice.M4A", "audio/mp4"},
		{"ogg extension", "", "rec.ogg", "audio/ogg"},
		{"unknown extension", "", "clip.xyz", DefaultMIMEType},
		{"no filename", "", "", DefaultMIMEType},
		{"whitespace explicit ignored", "  ", "clip.mp3", "audio/mpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveMIMEType(tt.explicit, tt.filename); got != tt.want {
				t.Errorf("ResolveMIMEType(%q, %q) = %q, want %q", tt.explicit, tt.filename, got, tt.want)
			}
		})
	}
}

func TestGeminiTranscribe(t *testing.T) {
	audio := []byte{0x01, 0x02, 0x03, 0x04}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody struct {
			Contents []struct {
				Parts []struct {
					Text       string `json:"text"`
					InlineData *struct {
						MIMEType string `json:"mime_type"`
						Data     string `json:"data"`
					} `json:"inline_data"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				ResponseModalities []string `json:"responseModalities"`
				Temperature        float64  `json:"temperature"`
			} `json:"generationConfig"`
		}
		json.NewDecoder(r.Body).Decode(&reqBody)

		if len(reqBody.Contents) != 1 || len(reqBody.Contents[0].Parts) != 2 {
			t.Fatalf("expected one content with two parts, got %+v", reqBody.Contents)
		}
		if reqBody.Contents[0].Parts[0].Text == "" {
			t.Error("expected instruction text part first")
		}
		inline := reqBody.Contents[0].Parts[1].InlineData
		if inline == nil {
			t.Fatal("expected inline audio part")
		}
		if inline.MIMEType != "audio/mpeg" {
			t.Errorf("expected audio/mpeg, got %s", inline.MIMEType)
		}
		if decoded, _ := base64.StdEncoding.DecodeString(inline.Data); string(decoded) != string(audio) {
			t.Error("audio bytes not carried verbatim")
		}
		if reqBody.GenerationConfig.Temperature != 0 {
			t.Errorf("expected temperature 0, got %f", reqBody.GenerationConfig.Temperature)
		}
		if len(reqBody.GenerationConfig.ResponseModalities) != 1 || reqBody.GenerationConfig.ResponseModalities[0] != "TEXT" {
			t.Errorf("expected TEXT modality, got %v", reqBody.GenerationConfig.ResponseModalities)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]string{{"text": " Hola robot "}},
					},
				},
			},
		})
	}))
	defer server.Close()

	client, err := NewGemini("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	result, err := client.Transcribe(context.Background(), &Request{
		Audio:    audio,
		Filename: "clip.mp3",
	})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.Text != "Hola robot" {
		t.Errorf("expected trimmed transcript, got %q", result.Text)
	}
	if result.MIMEType != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %s", result.MIMEType)
	}
}

func TestGeminiTranscribeEmptyAudio(t *testing.T) {
	client, err := NewGemini("test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	_, err = client.Transcribe(context.Background(), &Request{})
	if !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("expected ErrEmptyAudio, got %v", err)
	}
}

func TestGeminiTranscribeNoTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{},
		})
	}))
	defer server.Close()

	client, _ := NewGemini("test-key", WithBaseURL(server.URL))
	defer client.Close()

	_, err := client.Transcribe(context.Background(), &Request{Audio: []byte{0x01}})
	if !errors.Is(err, ErrNoTranscript) {
		t.Errorf("expected ErrNoTranscript, got %v", err)
	}
}

func TestGeminiRequiresAPIKey(t *testing.T) {
	_, err := NewGemini("")
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGeminiTranscribeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "overloaded"},
		})
	}))
	defer server.Close()

	client, _ := NewGemini("test-key", WithBaseURL(server.URL))
	defer client.Close()

	_, err := client.Transcribe(context.Background(), &Request{Audio: []byte{0x01}})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.IsServerError() {
		t.Errorf("expected server error, got %d", apiErr.StatusCode)
	}
}
