package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/haseeb5i/socket-task/internal/auth"
	"github.com/haseeb5i/socket-task/internal/domain"
	apperrors "github.com/haseeb5i/socket-task/internal/errors"
	"github.com/haseeb5i/socket-task/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Clients connect from arbitrary origins
	},
}

// Inbound frame budget per connection. Answers are tiny; anything chattier
// is abuse or a broken client.
const (
	inboundRate  = rate.Limit(5)
	inboundBurst = 10
)

// taskAnswerFrame is the only client-to-server message.
type taskAnswerFrame struct {
	ID     string `json:"id"`
	Answer string `json:"answer"`
}

func (s *Server) handleSocket(c echo.Context) error {
	wallet, _ := c.Get(auth.ContextKeyWallet).(string)
	sessionID, _ := c.Get(auth.ContextKeySessionID).(string)
	if sessionID == "" {
		return apperrors.ValidationError("token is not bound to a session")
	}

	session, err := s.sessions.Find(sessionID)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	if err := s.hub.Register(conn, session.ID, domain.UserRoom(wallet)); err != nil {
		slog.Warn("Failed to register with hub", "error", err)
		return nil
	}

	s.sendJoinAck(conn, session)

	s.hub.Publish(session.ID, domain.GameEvent{
		Type: domain.EventJoinSession,
		Body: fmt.Sprintf("%s joined the session", wallet),
	})

	s.readPump(conn, wallet)

	s.hub.Unregister(conn)
	s.hub.Publish(session.ID, domain.GameEvent{
		Type: domain.EventJoinSession,
		Body: fmt.Sprintf("%s left the session", wallet),
	})

	return nil
}

// sendJoinAck tells a joining client what phase the session is in. Clients
// that join mid-session also get the active task so they can render it
// without waiting for the next broadcast.
func (s *Server) sendJoinAck(conn *websocket.Conn, session domain.Session) {
	now := s.clock.Now().UnixMilli()

	switch {
	case session.StartsAt > now:
		s.hub.Send(conn, domain.GameEvent{
			Type: domain.EventJoinSession,
			Body: "Joined! session will start soon...",
		})
	case session.EndsAt < now:
		s.hub.Send(conn, domain.GameEvent{
			Type: domain.EventJoinSession,
			Body: "Session has ended",
		})
	default:
		s.hub.Send(conn, domain.GameEvent{
			Type: domain.EventJoinSession,
			Body: "Session in progress",
		})

		snap := s.scheduler.Snapshot()
		if snap.SessionID != session.ID || snap.ActiveTaskID == "" {
			return
		}
		if task, ok := session.Task(snap.ActiveTaskID); ok {
			s.hub.Send(conn, domain.GameEvent{
				Type: domain.EventTaskActive,
				Body: task.Body,
			})
		}
	}
}

// readPump consumes answer frames until the connection closes. Stale or
// malformed frames are dropped without a reply; the session timeline cannot
// be disturbed from the read side.
func (s *Server) readPump(conn *websocket.Conn, wallet string) {
	limiter := rate.NewLimiter(inboundRate, inboundBurst)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if !limiter.Allow() {
			metrics.WebSocketMessagesDropped.Inc()
			continue
		}

		var frame taskAnswerFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			slog.Debug("Dropping malformed answer frame", "wallet", wallet, "error", err)
			continue
		}

		slog.Debug("Answer received", "wallet", wallet, "task_id", frame.ID)

		if err := s.scheduler.SubmitAnswer(wallet, frame.ID, frame.Answer); err != nil {
			if errors.Is(err, domain.ErrStaleTask) {
				continue // silently dropped from the reward pool
			}
			slog.Warn("Answer submission failed", "wallet", wallet, "error", err)
		}
	}
}
