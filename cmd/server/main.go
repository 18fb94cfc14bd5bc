package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/haseeb5i/socket-task/internal/auth"
	"github.com/haseeb5i/socket-task/internal/broadcast"
	"github.com/haseeb5i/socket-task/internal/config"
	"github.com/haseeb5i/socket-task/internal/domain"
	"github.com/haseeb5i/socket-task/internal/game"
	"github.com/haseeb5i/socket-task/internal/logging"
	"github.com/haseeb5i/socket-task/internal/server"
	"github.com/haseeb5i/socket-task/internal/store"
	"github.com/haseeb5i/socket-task/internal/wallet"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runGracefulShutdown(srv *server.Server, scheduler *game.Scheduler, hub *broadcast.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		scheduler.Stop()
		hub.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	sessions := store.NewSessionStore(clock)
	hub := broadcast.NewHub(clock, cfg.MaxClientsPerRoom)
	rewards := wallet.NewClient(cfg.PayoutURL, cfg.PayoutAPIKey, cfg.RewardAmountWei)
	scheduler := game.NewScheduler(hub, rewards, domain.FirstSubmitterPolicy{}, clock)
	tokens := auth.NewTokenService(cfg.JWTSecret, clock)

	srv := server.NewServer(cfg, sessions, scheduler, hub, tokens, clock)

	done := runGracefulShutdown(srv, scheduler, hub)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
