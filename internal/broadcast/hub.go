package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/haseeb5i/socket-task/internal/domain"
	"github.com/haseeb5i/socket-task/internal/metrics"
)

const (
	commandTimeout = 5 * time.Second  // actor command timeout
	stopTimeout    = 10 * time.Second // graceful shutdown timeout
)

// hubCmd is the command interface for the Hub actor.
type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	connection   *websocket.Conn
	rooms        []string
	errorChannel chan error
}

type unregisterCmd struct {
	baseHubCmd
	connection *websocket.Conn
}

type publishCmd struct {
	baseHubCmd
	room  string
	event domain.GameEvent
}

type sendCmd struct {
	baseHubCmd
	connection *websocket.Conn
	event      domain.GameEvent
}

type roomCountCmd struct {
	baseHubCmd
	room         string
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

// Hub manages WebSocket connections grouped into rooms and fans published
// game events out to each room's subscribers. Delivery is at-most-once and
// best-effort: clients whose send buffer is full are evicted.
type Hub struct {
	cmdCh   chan hubCmd
	clock   clockwork.Clock
	writers map[*websocket.Conn]*clientWriter
	rooms   map[string]map[*websocket.Conn]struct{}
	joined  map[*websocket.Conn][]string

	maxClientsPerRoom int
	done              chan struct{}
}

// NewHub creates a hub and starts its actor goroutine.
// maxClientsPerRoom limits subscribers per room (prevents resource exhaustion).
func NewHub(clock clockwork.Clock, maxClientsPerRoom int) *Hub {
	h := &Hub{
		cmdCh:             make(chan hubCmd, 256),
		clock:             clock,
		writers:           make(map[*websocket.Conn]*clientWriter),
		rooms:             make(map[string]map[*websocket.Conn]struct{}),
		joined:            make(map[*websocket.Conn][]string),
		maxClientsPerRoom: maxClientsPerRoom,
		done:              make(chan struct{}),
	}
	go h.run()
	return h
}

// Register subscribes a connection to the given rooms.
// Returns an error only if a room is at its client limit.
func (h *Hub) Register(conn *websocket.Conn, rooms ...string) error {
	errCh := make(chan error, 1)
	h.cmdCh <- registerCmd{connection: conn, rooms: rooms, errorChannel: errCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a connection from all its rooms and stops its writer.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- unregisterCmd{connection: conn}
}

// Publish fans an event out to the current subscribers of a room.
// Implements domain.Broadcaster.
func (h *Hub) Publish(room string, event domain.GameEvent) {
	h.cmdCh <- publishCmd{room: room, event: event}
}

// Send delivers an event to a single connection, regardless of rooms. Used
// for join-time acknowledgments.
func (h *Hub) Send(conn *websocket.Conn, event domain.GameEvent) {
	h.cmdCh <- sendCmd{connection: conn, event: event}
}

// RoomCount returns the number of subscribers in a room.
// Returns -1 if the command times out.
func (h *Hub) RoomCount(room string) int {
	replyCh := make(chan int, 1)
	h.cmdCh <- roomCountCmd{room: room, replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("RoomCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts down the hub, closing all client connections.
// Blocks until the hub goroutine has exited or timeout is reached.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}

	timeout := h.clock.NewTimer(stopTimeout)
	defer timeout.Stop()

	select {
	case <-h.done:
		slog.Info("Hub stopped gracefully")
	case <-timeout.Chan():
		slog.Warn("Hub stop timeout exceeded, forcing exit", "timeout", stopTimeout)
		close(h.done)
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Hub panic recovered", "panic", r)
			metrics.HubPanicsTotal.Inc()
			h.closeAllClients("hub panic")
		}
	}()
	defer close(h.done)

	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			c.errorChannel <- h.handleRegister(c.connection, c.rooms)
		case unregisterCmd:
			h.handleUnregister(c.connection)
		case publishCmd:
			h.handlePublish(c.room, c.event)
		case sendCmd:
			h.handleSend(c.connection, c.event)
		case roomCountCmd:
			c.replyChannel <- len(h.rooms[c.room])
		case stopCmd:
			h.handleStop()
			return
		default:
			slog.Warn("Hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (h *Hub) handleRegister(conn *websocket.Conn, rooms []string) error {
	for _, room := range rooms {
		if len(h.rooms[room]) >= h.maxClientsPerRoom {
			slog.Warn("Rejecting client: max clients reached", "room", room, "max_clients", h.maxClientsPerRoom)
			conn.Close()
			return fmt.Errorf("max clients per room (%d) reached", h.maxClientsPerRoom)
		}
	}

	if _, ok := h.writers[conn]; !ok {
		h.writers[conn] = newClientWriter(conn, h.clock)
		metrics.HubConnectedClients.Inc()
	}

	for _, room := range rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[*websocket.Conn]struct{})
			h.rooms[room] = members
		}
		members[conn] = struct{}{}
	}
	h.joined[conn] = append(h.joined[conn], rooms...)

	metrics.HubActiveRooms.Set(float64(len(h.rooms)))
	slog.Debug("Client registered", "rooms", rooms)
	return nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, ok := h.writers[conn]
	if !ok {
		return
	}

	cw.stop()
	delete(h.writers, conn)
	metrics.HubConnectedClients.Dec()

	for _, room := range h.joined[conn] {
		members, ok := h.rooms[room]
		if !ok {
			continue
		}
		delete(members, conn)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.joined, conn)

	metrics.HubActiveRooms.Set(float64(len(h.rooms)))
	slog.Debug("Client unregistered")
}

func (h *Hub) handlePublish(room string, event domain.GameEvent) {
	members := h.rooms[room]
	if len(members) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "error", err)
		return
	}

	var slow []*websocket.Conn
	for conn := range members {
		writer, ok := h.writers[conn]
		if !ok {
			continue
		}
		select {
		case writer.sendChannel <- data:
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow client", "room", room)
		metrics.HubSlowClientsEvicted.Inc()
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleSend(conn *websocket.Conn, event domain.GameEvent) {
	writer, ok := h.writers[conn]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal direct message", "error", err)
		return
	}

	select {
	case writer.sendChannel <- data:
	default:
		slog.Warn("Disconnecting slow client")
		metrics.HubSlowClientsEvicted.Inc()
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	slog.Info("Hub shutting down", "rooms", len(h.rooms), "total_clients", len(h.writers))
	h.closeAllClients("Server shutting down")
	slog.Info("Hub shutdown complete")
}

// closeAllClients closes all client connections with the given reason.
// Used during panic recovery and graceful shutdown.
func (h *Hub) closeAllClients(reason string) {
	for conn, cw := range h.writers {
		cw.stopGraceful(reason)
		delete(h.writers, conn)
		delete(h.joined, conn)
	}
	for room := range h.rooms {
		delete(h.rooms, room)
	}
	metrics.HubActiveRooms.Set(0)
	metrics.HubConnectedClients.Set(0)
}
