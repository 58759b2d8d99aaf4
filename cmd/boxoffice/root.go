package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyperengineering/boxoffice/internal/api"
	"github.com/hyperengineering/boxoffice/internal/assistant"
	"github.com/hyperengineering/boxoffice/internal/completion"
	"github.com/hyperengineering/boxoffice/internal/config"
	"github.com/hyperengineering/boxoffice/internal/discovery"
	"github.com/hyperengineering/boxoffice/internal/embedding"
	"github.com/hyperengineering/boxoffice/internal/report"
	"github.com/hyperengineering/boxoffice/internal/semantic"
	"github.com/hyperengineering/boxoffice/internal/session"
	"github.com/hyperengineering/boxoffice/internal/store"
	"github.com/hyperengineering/boxoffice/internal/workflow"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "boxoffice",
	Short: "Boxoffice - natural-language ticketing assistant",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func run(cmd *cobra.Command, args []string) error {
	// Signal handling drives the whole shutdown sequence.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	logger := slog.New(newLogHandler(cfg.Log))
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Log.Level)

	db, err := store.NewEventStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	cache := embedding.LoadCache(cfg.Cache.Path)
	embedder := embedding.NewCachedEmbedder(
		embedding.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel),
		cache,
	)
	slog.Info("embedder initialized",
		"model", cfg.OpenAI.EmbeddingModel, "cached_entries", cache.Len())

	completer := completion.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.CompletionModel)
	slog.Info("completer initialized", "model", cfg.OpenAI.CompletionModel)

	// Warm the vocabulary embeddings so first queries stay off the network
	// for alias matching. Best effort; misses fill in lazily.
	if _, err := embedder.EmbedBatch(ctx, semantic.VocabularyPhrases()); err != nil {
		slog.Warn("vocabulary warmup skipped", "error", err)
	}

	normalizer := semantic.NewNormalizer(semantic.NewMatcher(embedder), cfg.Interpreter.SimilarityFloor)
	interpreter := semantic.NewInterpreter(completer, normalizer)
	wf := workflow.New(db)
	disc := discovery.NewClient(cfg.Discovery, completer)
	reporter := report.NewReporter(db, completer)
	sessions := session.NewManager()

	engine := assistant.NewEngine(db, interpreter, wf, disc, reporter, completer, sessions)

	handler := api.NewHandler(engine, db, cfg.Auth.APIKey, Version,
		cfg.OpenAI.EmbeddingModel, cfg.OpenAI.CompletionModel)
	router := api.NewRouter(handler)
	slog.Info("router initialized")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called
		// gracefully. Anything else is a real failure.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := cache.Flush(); err != nil {
		slog.Error("embedding cache flush error", "error", err)
	}

	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func newLogHandler(cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
