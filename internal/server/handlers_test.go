package server

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/haseeb5i/socket-task/internal/auth"
	"github.com/haseeb5i/socket-task/internal/broadcast"
	"github.com/haseeb5i/socket-task/internal/config"
	"github.com/haseeb5i/socket-task/internal/domain"
	apperrors "github.com/haseeb5i/socket-task/internal/errors"
	"github.com/haseeb5i/socket-task/internal/game"
	"github.com/haseeb5i/socket-task/internal/store"
)

const testSecret = "test-secret-with-enough-length"

// --- Mock implementations ---

type nopBroadcaster struct {
	mu     sync.Mutex
	events []domain.GameEvent
}

func (b *nopBroadcaster) Publish(_ string, event domain.GameEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(_ context.Context, _ string) (string, error) {
	return "0x0", nil
}

// --- Test helpers ---

type testWallet struct {
	address   string
	signature string
}

func newTestWallet(t *testing.T) testWallet {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return testWallet{
		address:   auth.WalletAddress(pub),
		signature: auth.SignLoginChallenge(priv),
	}
}

// newTestServer builds a Server wired like production, minus the access log.
func newTestServer(t *testing.T, adminWallets ...string) *Server {
	t.Helper()

	clock := clockwork.NewRealClock()
	cfg := &config.Config{
		Port:              "5000",
		JWTSecret:         testSecret,
		AdminWallets:      adminWallets,
		MaxClientsPerRoom: 10,
	}

	hub := broadcast.NewHub(clock, cfg.MaxClientsPerRoom)
	t.Cleanup(func() { hub.Stop() })

	scheduler := game.NewScheduler(&nopBroadcaster{}, nopDispatcher{}, domain.FirstSubmitterPolicy{}, clock)
	t.Cleanup(func() { scheduler.Stop() })

	e := echo.New()
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		sessions:  store.NewSessionStore(clock),
		scheduler: scheduler,
		hub:       hub,
		tokens:    auth.NewTokenService(testSecret, clock),
		clock:     clock,
		startTime: clock.Now(),
	}
	srv.registerRoutes()

	return srv
}

func performJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func issueToken(t *testing.T, srv *Server, wallet, role string) string {
	t.Helper()
	token, err := srv.tokens.Issue(wallet, role, "")
	require.NoError(t, err)
	return token
}

func validSessionBody() map[string]any {
	return map[string]any{
		"startsAt": time.Now().Add(time.Hour).UnixMilli(),
		"title":    "quiz night",
		"tasks": []map[string]any{
			{"body": "first question", "timeInSec": 10},
			{"body": "second question", "timeInSec": 5},
		},
	}
}
