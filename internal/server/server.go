package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/haseeb5i/socket-task/internal/auth"
	"github.com/haseeb5i/socket-task/internal/broadcast"
	"github.com/haseeb5i/socket-task/internal/config"
	apperrors "github.com/haseeb5i/socket-task/internal/errors"
	"github.com/haseeb5i/socket-task/internal/game"
	"github.com/haseeb5i/socket-task/internal/store"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	sessions  *store.SessionStore
	scheduler *game.Scheduler
	hub       *broadcast.Hub
	tokens    *auth.TokenService
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, sessions *store.SessionStore, scheduler *game.Scheduler, hub *broadcast.Hub, tokens *auth.TokenService, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		sessions:  sessions,
		scheduler: scheduler,
		hub:       hub,
		tokens:    tokens,
		clock:     clock,
		startTime: clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
