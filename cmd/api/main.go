// Package main is the entry point for the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/promptforge/generation-api/internal/config"
	"github.com/promptforge/generation-api/internal/handler"
	"github.com/promptforge/generation-api/internal/llm"
	natsclient "github.com/promptforge/generation-api/internal/nats"
	"github.com/promptforge/generation-api/internal/service"
	"github.com/promptforge/generation-api/internal/store"
	"github.com/promptforge/generation-api/pkg/logger"
	"github.com/promptforge/generation-api/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	seedPath := flag.String("seed", cfg.SeedFile, "JSON file with models and drafts to upsert on startup")
	flag.Parse()

	// Initialize logger
	log, err := logger.ForEnv(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "generation-api", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the store
	db, err := store.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatal("failed to open store", zap.String("path", cfg.DatabasePath), zap.Error(err))
	}
	defer db.Close()

	if *seedPath != "" {
		models, drafts, err := db.LoadSeed(ctx, *seedPath)
		if err != nil {
			log.Fatal("failed to load seed file", zap.String("path", *seedPath), zap.Error(err))
		}
		log.Info("seed loaded", zap.Int("models", models), zap.Int("drafts", drafts))
	}

	// Usage events are optional
	var (
		natsClient *natsclient.Client
		publisher  service.UsagePublisher
	)
	if cfg.NATSEnabled {
		natsClient, err = natsclient.Connect(natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer natsClient.Close()

		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			log.Fatal("failed to ensure stream", zap.Error(err))
		}
		publisher = streamManager
	}

	// Initialize provider adapters
	registry := llm.NewDefaultRegistry(llm.BaseURLs{
		OpenAI:     cfg.OpenAIBaseURL,
		Anthropic:  cfg.AnthropicBaseURL,
		Google:     cfg.GoogleBaseURL,
		Perplexity: cfg.PerplexityBaseURL,
		Grok:       cfg.GrokBaseURL,
	})

	// Initialize services
	generationSvc := service.NewGenerationService(db, registry, publisher, service.Options{
		RateLimit:       cfg.UserRateLimit,
		RateWindow:      cfg.UserRateWindow,
		ProviderTimeout: cfg.ProviderTimeout,
		Temperature:     cfg.DefaultTemperature,
	}, log)

	// Create router
	router := handler.NewRouter(handler.RouterConfig{
		Generate:            handler.NewGenerateHandler(generationSvc, log),
		Health:              handler.NewHealthHandler(db, natsClient),
		Logger:              log,
		JWTSecret:           cfg.JWTSecret,
		IPRateLimitRequests: cfg.IPRateLimitRequests,
		IPRateLimitWindow:   cfg.IPRateLimitWindow,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// Let in-flight usage writes land before the store closes.
	generationSvc.Wait()

	log.Info("server stopped")
}
