package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/consulting-control/backend/internal/config"
	"github.com/consulting-control/backend/internal/db"
	httpapi "github.com/consulting-control/backend/internal/http"
	"github.com/consulting-control/backend/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "controlling-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	var source upstream.Source
	if cfg.UpstreamURL == "" {
		source = upstream.MockSource{}
		logger.Info().Msg("using mock upstream source")
	} else {
		source = upstream.HTTPSource{BaseURL: cfg.UpstreamURL, APIKey: cfg.UpstreamAPIKey}
	}

	router := httpapi.Router(cfg, store, source, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
