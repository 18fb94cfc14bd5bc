package server

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/haseeb5i/socket-task/internal/domain"
	apperrors "github.com/haseeb5i/socket-task/internal/errors"
	"github.com/haseeb5i/socket-task/internal/store"
)

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

func (s *Server) handleCreateSession(c echo.Context) error {
	var spec store.SessionSpec
	if err := c.Bind(&spec); err != nil {
		return apperrors.ValidationError("malformed request body")
	}
	if spec.Title == "" {
		return apperrors.ValidationError("title is required")
	}
	for i, task := range spec.Tasks {
		if task.Body == "" {
			return apperrors.ValidationError("task body is required").WithField("task", i+1)
		}
	}

	session, err := s.sessions.Create(spec)
	if err != nil {
		return err
	}

	s.scheduler.Arm(session)

	if err := c.JSON(200, createSessionResponse{
		SessionID: session.ID,
		Message:   "Session scheduled successfully",
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type updateSessionRequest struct {
	ID          string `json:"id"`
	StartsAt    int64  `json:"startsAt,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// handleUpdateSession rejects reschedules: sessions are immutable once
// armed. The request is still validated so callers get the most specific
// error first.
func (s *Server) handleUpdateSession(c echo.Context) error {
	var req updateSessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("malformed request body")
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return apperrors.ValidationError("invalid session id").WithField("id", req.ID)
	}

	if _, err := s.sessions.Find(req.ID); err != nil {
		return err
	}

	return domain.ErrUpdateUnsupported
}

func (s *Server) handleListSessions(c echo.Context) error {
	if err := c.JSON(200, s.sessions.List()); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
