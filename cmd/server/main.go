package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/acquire"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/config"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/handlers"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/journal"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/logging"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/queue"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/scratch"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/transcription"
)

func main() {
	// .env is loaded before the config reads the environment.
	_ = godotenv.Load()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logBuffer := logging.NewBuffer(1000)
	log, err := logging.New(logging.Options{Debug: cfg.Server.Debug, Capture: logBuffer})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}

	log.Info("starting podcast transcriber",
		zap.String("backend", cfg.Whisper.Backend),
		zap.String("model", cfg.Whisper.Model),
		zap.Int("workers", cfg.Workers.Count))

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		log.Fatal("ffmpeg not found on PATH, audio cannot be decoded without it")
	}

	var transcriber transcription.Transcriber
	switch cfg.Whisper.Backend {
	case "openai":
		transcriber, err = transcription.NewOpenAI(cfg.Whisper.OpenAIAPIKey, "", cfg.Whisper.Language, log)
	default:
		transcriber, err = transcription.NewWhisper(cfg.Whisper.Python, cfg.Whisper.Language, log)
	}
	if err != nil {
		log.Fatal("transcription backend unavailable", zap.Error(err))
	}

	// yt-dlp is fetched up front when missing. Failure only disables
	// YouTube URLs, so the server still starts.
	installCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if _, err := ytdlp.Install(installCtx, nil); err != nil {
		log.Warn("yt-dlp unavailable, YouTube URLs will fail", zap.Error(err))
	}
	cancel()

	scratchMgr, err := scratch.NewManager(cfg.Scratch.Dir, log)
	if err != nil {
		log.Fatal("scratch directory unusable", zap.Error(err))
	}
	sweeper := scratch.NewSweeper(cfg.Scratch.Dir, cfg.SweepInterval(), cfg.ScratchMaxAge(), log)
	sweeper.Start()
	defer sweeper.Stop()

	// Request history lives in memory only and dies with the process.
	j, err := journal.Open(":memory:")
	if err != nil {
		log.Fatal("journal setup failed", zap.Error(err))
	}
	defer j.Close()

	acquirer := acquire.New(nil, cfg.MaxDownloadBytes(), log)

	pool := queue.NewWorkerPool(queue.Options{
		Workers:         cfg.Workers.Count,
		QueueSize:       cfg.Workers.QueueSize,
		DownloadTimeout: cfg.DownloadTimeout(),
		SlowFactor:      cfg.Whisper.SlowFactor,
	}, scratchMgr, acquirer, transcriber, j, log)
	pool.Start()

	app := fiber.New()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	transcribeHandler := handlers.NewTranscribeHandler(pool, j, cfg.Whisper.Model, log)
	streamHandler := handlers.NewStreamHandler(pool, j, cfg.Whisper.Model, log)

	app.Get("/", handlers.Index)
	app.Post("/transcribe", transcribeHandler.Handle)
	app.Get("/health", handlers.NewHealthHandler(cfg.Whisper.Model, transcriber.Name()).Handle)
	app.Get("/history", handlers.NewHistoryHandler(j, 50, log).Handle)
	app.Get("/logs", handlers.NewLogsHandler(logBuffer).Handle)

	// WebSocket variant of /transcribe with progress streaming.
	app.Get("/ws/transcribe", websocket.New(streamHandler.Handle))

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	log.Info("listening", zap.String("addr", cfg.Addr()))
	if err := app.Listen(cfg.Addr()); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
