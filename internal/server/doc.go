// Package server implements the HTTP server using Echo framework.
//
// Routes: users (signature login), session (admin create, list), ws (realtime join),
// plus observability endpoints. Handlers split by domain: handlers_users.go,
// handlers_session.go, handlers_socket.go, handlers_health.go.
package server
