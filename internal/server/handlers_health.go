package server

import (
	"github.com/labstack/echo/v4"

	"github.com/haseeb5i/socket-task/internal/version"
)

func (s *Server) handleWelcome(c echo.Context) error {
	return c.JSON(200, map[string]string{"message": "socket-task game session service"})
}

func (s *Server) handleAPIIndex(c echo.Context) error {
	return c.JSON(200, map[string]string{"message": "API v1"})
}

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// handleReadiness verifies the hub actor is responsive. All state is
// in-process, so there are no external dependencies to probe.
func (s *Server) handleReadiness(c echo.Context) error {
	if s.hub.RoomCount("readiness-probe") < 0 {
		return c.JSON(503, map[string]any{
			"status":       "unhealthy",
			"failed_check": "hub",
		})
	}
	return c.JSON(200, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
