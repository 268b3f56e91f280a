package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusgrid/lectern/internal/backend"
	"github.com/campusgrid/lectern/internal/cache"
	"github.com/campusgrid/lectern/internal/config"
	"github.com/campusgrid/lectern/internal/dashboard"
	"github.com/campusgrid/lectern/internal/rest"
	"github.com/campusgrid/lectern/internal/webui"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snaps, err := cache.Open(ctx, cache.Driver(cfg.CacheDriver), cfg.CacheDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open snapshot cache")
	}
	defer snaps.Close()

	api := backend.New(
		rest.New(cfg.BackendBaseURL, webui.RequestTokens(), cfg.RequestTimeout, log),
		log,
	)
	ctrl := dashboard.NewController(api, snaps, log)

	srv, err := webui.NewServer(cfg, ctrl, api, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build web server")
	}

	hs := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hs.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.BackendBaseURL).Msg("lecternd listening")
	if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server")
	}
}
