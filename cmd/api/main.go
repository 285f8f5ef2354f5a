package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"teamie/internal/analyzer"
	"teamie/internal/config"
	"teamie/internal/handler"
	"teamie/internal/llm"
	"teamie/internal/metrics"
	"teamie/internal/modelcfg"
	"teamie/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Development() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if level, perr := zerolog.ParseLevel(cfg.LogLevel); perr == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Logger = logger

	logger.Info().
		Str("environment", cfg.Environment).
		Str("addr", cfg.ListenAddr).
		Str("data_root", cfg.DataRoot).
		Str("provider", cfg.LLMProvider).
		Msg("starting teamie api")

	st, err := store.New(cfg.DataRoot, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open report store")
	}
	if cfg.ArchiveEnabled() {
		archive, aerr := store.NewS3Archive(store.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if aerr != nil {
			logger.Fatal().Err(aerr).Msg("failed to init document archive")
		}
		st.SetArchive(archive)
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("document archive enabled")
	}

	models := modelcfg.NewProvider(st.Root(), "", nil)
	m := metrics.New()

	srv := handler.NewServer(handler.Deps{
		Store:        st,
		Models:       models,
		Clients:      clientFactory(cfg, logger),
		SystemPrompt: analyzer.LoadSystemPrompt(cfg.SystemPromptPath),
		Metrics:      m,
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.ListenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}
}

// clientFactory builds the model client for the current selection. The
// provider choice is fixed at startup; the model id varies per request.
func clientFactory(cfg *config.Config, logger zerolog.Logger) handler.ClientFactory {
	if strings.EqualFold(cfg.LLMProvider, "gemini") {
		return func(model string) llm.Client {
			c, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, model)
			if err != nil {
				logger.Error().Err(err).Msg("gemini client init failed")
				return llm.NewErrClient("Gemini:"+model, fmt.Errorf("%w: %v", llm.ErrNotConfigured, err))
			}
			return c
		}
	}
	return func(model string) llm.Client {
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, model, cfg.OpenAIBaseURL, cfg.MaxCompletionTokens)
	}
}
