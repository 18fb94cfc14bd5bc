package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haseeb5i/socket-task/internal/auth"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	s.echo.GET("/", s.handleWelcome)

	api := s.echo.Group("/api/v1")
	api.GET("", s.handleAPIIndex)

	// Registration issues the token, so it is the one unauthenticated route
	api.POST("/users/register", s.handleRegister)

	requireToken := auth.Middleware(s.tokens)

	session := api.Group("/session", requireToken)
	session.POST("", s.handleCreateSession, auth.RequireAdmin)
	session.PUT("", s.handleUpdateSession, auth.RequireAdmin)
	session.GET("", s.handleListSessions)

	// Realtime channel (token via query param for browser clients)
	s.echo.GET("/ws", s.handleSocket, requireToken)
}
