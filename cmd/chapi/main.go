// Chapi backend: bridges the companion robot with transcription, chat
// inference, and speech synthesis services.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MarceloCamachh/chapi/internal/config"
	"github.com/MarceloCamachh/chapi/internal/log"
	"github.com/MarceloCamachh/chapi/internal/observability"
	"github.com/MarceloCamachh/chapi/pkg/hub"
	"github.com/MarceloCamachh/chapi/pkg/inference"
	"github.com/MarceloCamachh/chapi/pkg/reply"
	"github.com/MarceloCamachh/chapi/pkg/stt"
	"github.com/MarceloCamachh/chapi/pkg/tts"
	"github.com/MarceloCamachh/chapi/pkg/voice"
	"github.com/MarceloCamachh/chapi/pkg/web"
)

func main() {
	// .env is optional; production sets real environment variables.
	dotenvErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	if dotenvErr != nil {
		log.Debug("no .env file loaded")
	}

	if err := config.EnsureGoogleCredentialsFile(".runtime"); err != nil {
		log.Error("google credentials setup failed", "error", err)
		os.Exit(1)
	}

	textChat, err := inference.NewClient(
		inference.WithAPIKey(cfg.OpenAIAPIKey),
		inference.WithModel(cfg.OpenAIModel),
	)
	if err != nil {
		log.Error("openai client setup failed", "error", err)
		os.Exit(1)
	}
	defer textChat.Close()

	voiceChat, err := inference.NewGemini(
		inference.WithAPIKey(cfg.GeminiAPIKey),
		inference.WithModel(cfg.GeminiModel),
	)
	if err != nil {
		log.Error("gemini client setup failed", "error", err)
		os.Exit(1)
	}
	defer voiceChat.Close()

	transcriber, err := stt.NewGemini(cfg.GeminiAPIKey,
		stt.WithModel(cfg.GeminiSTTModel),
		stt.WithInstruction(cfg.STTInstruction),
	)
	if err != nil {
		log.Error("transcriber setup failed", "error", err)
		os.Exit(1)
	}
	defer transcriber.Close()

	synthesizer, err := tts.NewGemini(cfg.GeminiAPIKey,
		tts.WithModel(cfg.GeminiTTSModel),
		tts.WithVoice(cfg.GeminiTTSVoice),
	)
	if err != nil {
		log.Error("synthesizer setup failed", "error", err)
		os.Exit(1)
	}
	defer synthesizer.Close()

	metrics := observability.NewMetrics("chapi")
	conversationHub := hub.New("conversation")

	pipeline := voice.New(textChat, voiceChat, transcriber, synthesizer, reply.NewGate(""),
		voice.WithSystemPrompt(cfg.SystemPrompt()),
		voice.WithHub(conversationHub),
		voice.WithMetrics(metrics),
	)

	server := web.NewServer(cfg.BindAddr, pipeline, conversationHub, metrics)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		server.Shutdown()
	}()

	if err := server.Start(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
