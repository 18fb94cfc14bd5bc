package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness(t *testing.T) {
	srv := newTestServer(t)

	rec := performJSON(t, srv, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, 200, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")
}

func TestReadiness(t *testing.T) {
	srv := newTestServer(t)

	rec := performJSON(t, srv, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])
}

func TestVersionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := performJSON(t, srv, http.MethodGet, "/version", "", nil)
	require.Equal(t, 200, rec.Code)

	body := decodeBody(t, rec)
	assert.Contains(t, body, "version")
	assert.Contains(t, body, "go_version")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := performJSON(t, srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestWelcome(t *testing.T) {
	srv := newTestServer(t)

	rec := performJSON(t, srv, http.MethodGet, "/", "", nil)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "socket-task")
}

func TestAPIIndex(t *testing.T) {
	srv := newTestServer(t)

	rec := performJSON(t, srv, http.MethodGet, "/api/v1", "", nil)
	require.Equal(t, 200, rec.Code)
}
