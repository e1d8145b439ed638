// voicebridge: voice assistant gateway backed by a hosted Chatbase chatbot.
// Rooms connect over HTTP or WebSocket; each room gets its own assistant and
// backend conversation, and replies are optionally voiced with ElevenLabs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-voicebridge/internal/config"
	"github.com/teslashibe/go-voicebridge/internal/log"
	"github.com/teslashibe/go-voicebridge/pkg/chatbase"
	"github.com/teslashibe/go-voicebridge/pkg/gateway"
	"github.com/teslashibe/go-voicebridge/pkg/session"
	"github.com/teslashibe/go-voicebridge/pkg/tts"
)

var (
	version    = "0.1.0"
	port       = flag.Int("port", 0, "HTTP server port (overrides config and PORT)")
	configPath = flag.String("config", "", "Optional YAML config file")
	envPath    = flag.String("env", ".env", "Dotenv file loaded before reading the environment")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
	debug      = flag.Bool("debug", false, "Enable request logging")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		if errors.Is(err, config.ErrMissingRequired) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	// .env values win over the inherited environment
	if err := config.LoadDotenv(*envPath, true); err != nil {
		return fmt.Errorf("load %s: %w", *envPath, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *debug {
		cfg.Server.Debug = true
	}

	log.Init(cfg.Log.Level)
	logger := log.Component("voicebridge")
	logger.Info("configuration loaded",
		log.Secret(config.EnvChatbaseAPIKey, cfg.Chatbase.APIKey),
		log.Secret(config.EnvElevenAPIKey, cfg.TTS.APIKey),
		"eleven_voice_id", cfg.TTS.VoiceID,
		"chatbase_url", cfg.Chatbase.URL,
	)

	fmt.Println()
	fmt.Println("🎙️  Voicebridge v" + version)
	fmt.Println("   Voice sessions for a hosted chatbot")
	fmt.Println()

	client, err := chatbase.NewClient(
		chatbase.WithAPIKey(cfg.Chatbase.APIKey),
		chatbase.WithChatbotID(cfg.Chatbase.ChatbotID),
		chatbase.WithURL(cfg.Chatbase.URL),
		chatbase.WithTimeout(cfg.Chatbase.Timeout),
		chatbase.WithLogger(log.L()),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	var voice tts.Provider
	if cfg.TTS.Enabled() {
		el, err := tts.NewElevenLabs(
			tts.WithAPIKey(cfg.TTS.APIKey),
			tts.WithVoice(cfg.TTS.VoiceID),
			tts.WithModel(cfg.TTS.Model),
			tts.WithLogger(log.L()),
		)
		if err != nil {
			return err
		}
		defer el.Close()
		voice = el
		fmt.Printf("🔊 Speech: ElevenLabs %s (voice %s)\n", el.ModelID(), el.VoiceID())
	} else {
		fmt.Println("🔇 Speech: disabled (set ELEVEN_API_KEY to enable)")
	}

	sessions := session.NewManager(session.BackendFactory(client, log.L()), voice, log.L())
	server := gateway.New(sessions,
		gateway.WithVersion(version),
		gateway.WithDebug(cfg.Server.Debug),
		gateway.WithLogger(log.L()),
		gateway.WithBackendStats(client.Stats),
	)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		fmt.Printf("🚀 Starting server on %s\n", addr)
		fmt.Printf("   WebSocket: ws://localhost:%d/ws/rooms/{room}\n", cfg.Server.Port)
		fmt.Printf("   Turns:     http://localhost:%d/api/rooms/{room}/turns\n", cfg.Server.Port)
		fmt.Printf("   Health:    http://localhost:%d/health\n", cfg.Server.Port)
		fmt.Println()
		errCh <- server.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-quit:
	}

	fmt.Println("\n👋 Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("shutdown error", "error", err)
	}

	st := client.Stats()
	logger.Info("backend totals",
		"requests", st.Requests,
		"ok", st.OK,
		"transport_failures", st.TransportFailures,
		"backend_errors", st.BackendErrors,
		"malformed", st.MalformedReplies,
	)
	fmt.Println("✅ Goodbye!")
	return nil
}
