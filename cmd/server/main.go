package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/signalmaster/internal/adapters/access"
	router "github.com/dkeye/signalmaster/internal/adapters/http"
	wssignal "github.com/dkeye/signalmaster/internal/adapters/signal"
	"github.com/dkeye/signalmaster/internal/app"
	"github.com/dkeye/signalmaster/internal/app/orch"
	"github.com/dkeye/signalmaster/internal/app/turn"
	"github.com/dkeye/signalmaster/internal/config"
	"github.com/dkeye/signalmaster/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("signalmaster stopped")
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogging(cfg)

	m := metrics.New()

	store, err := access.Open(ctx, cfg.Auth)
	if err != nil {
		return fmt.Errorf("open access store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close access store")
		}
	}()

	minter, err := turn.NewMinter(turn.MinterConfig{
		Servers:       cfg.TurnServers,
		DefaultExpiry: cfg.TurnDefaultExpiry,
	})
	if err != nil {
		return fmt.Errorf("turn minter: %w", err)
	}

	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(),
		Policy:   app.SimplePolicy{},
		Metrics:  m,
	}
	ctrl := wssignal.NewSignalWSController(o, minter, cfg.StunServers,
		wssignal.NewRoomRateLimiter(cfg.JoinRate.Limit, cfg.JoinRate.Interval),
		wssignal.Settings{
			ReadLimit:        cfg.ReadLimit,
			PingPeriod:       cfg.PingPeriod,
			PongWait:         cfg.PongWait,
			SendBuffer:       cfg.SendBuffer,
			EnforceClaimRoom: cfg.EnforceClaimRoom,
		})

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Orch:    o,
		Gate:    &app.Gate{Store: store, Timeout: cfg.Auth.Timeout, Metrics: m},
		Signal:  ctrl,
		Metrics: m,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	// privileged ports are bound by now
	if cfg.UID != 0 {
		if err := syscall.Setuid(cfg.UID); err != nil {
			_ = ln.Close()
			return fmt.Errorf("setuid %d: %w", cfg.UID, err)
		}
		log.Info().Int("uid", cfg.UID).Msg("dropped privileges")
	}

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("signalmaster started")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}

func setupLogging(cfg *config.Config) {
	if cfg.Mode == "debug" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
