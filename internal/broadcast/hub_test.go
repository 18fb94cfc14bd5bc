package broadcast

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haseeb5i/socket-task/internal/domain"
)

// testHub sets up a Hub with a test HTTP server that registers each dialed
// connection into the rooms named by the "rooms" query parameter.
func testHub(t *testing.T, maxClientsPerRoom int) (*Hub, func(rooms ...string) *ws.Conn) {
	t.Helper()

	hub := NewHub(clockwork.NewRealClock(), maxClientsPerRoom)
	t.Cleanup(func() { hub.Stop() })

	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		rooms := strings.Split(r.URL.Query().Get("rooms"), ",")
		_ = hub.Register(conn, rooms...)

		go func() {
			defer hub.Unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}))
	t.Cleanup(func() { server.Close() })

	dial := func(rooms ...string) *ws.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "?rooms=" + strings.Join(rooms, ",")
		conn, _, err := ws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	return hub, dial
}

func waitForRoomCount(h *Hub, room string, expected int) bool {
	for i := 0; i < 100; i++ {
		if h.RoomCount(room) == expected {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func readEvent(t *testing.T, conn *ws.Conn) domain.GameEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event domain.GameEvent
	require.NoError(t, json.Unmarshal(msg, &event))
	return event
}

func TestHub_PublishReachesRoomMembers(t *testing.T) {
	hub, dial := testHub(t, 100)

	conn1 := dial("quiz-1")
	conn2 := dial("quiz-1")
	require.True(t, waitForRoomCount(hub, "quiz-1", 2))

	hub.Publish("quiz-1", domain.GameEvent{Type: domain.EventSessionStarted, Body: "go", Duration: 5000})

	for _, conn := range []*ws.Conn{conn1, conn2} {
		event := readEvent(t, conn)
		assert.Equal(t, domain.EventSessionStarted, event.Type)
		assert.Equal(t, "go", event.Body)
		assert.Equal(t, int64(5000), event.Duration)
	}
}

func TestHub_RoomIsolation(t *testing.T) {
	hub, dial := testHub(t, 100)

	connA := dial("room-a")
	connB := dial("room-b")
	require.True(t, waitForRoomCount(hub, "room-a", 1))
	require.True(t, waitForRoomCount(hub, "room-b", 1))

	hub.Publish("room-a", domain.GameEvent{Type: domain.EventTaskStarted, Body: "only a"})

	event := readEvent(t, connA)
	assert.Equal(t, "only a", event.Body)

	connB.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := connB.ReadMessage()
	assert.Error(t, err, "room-b member should not receive room-a events")
}

func TestHub_MultiRoomMembership(t *testing.T) {
	hub, dial := testHub(t, 100)

	conn := dial("quiz-1", "users:0xabc")
	require.True(t, waitForRoomCount(hub, "quiz-1", 1))
	require.True(t, waitForRoomCount(hub, "users:0xabc", 1))

	hub.Publish("quiz-1", domain.GameEvent{Type: domain.EventTaskStarted, Body: "shared"})
	hub.Publish("users:0xabc", domain.GameEvent{Type: domain.EventReward, Body: "private"})

	first := readEvent(t, conn)
	second := readEvent(t, conn)
	assert.Equal(t, "shared", first.Body)
	assert.Equal(t, "private", second.Body)
}

func TestHub_SendTargetsSingleConnection(t *testing.T) {
	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *ws.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		ready <- conn
	}))
	t.Cleanup(func() { srv.Close() })

	hub := NewHub(clockwork.NewRealClock(), 100)
	t.Cleanup(func() { hub.Stop() })

	dialPair := func() (server, client *ws.Conn) {
		t.Helper()
		url := "ws" + strings.TrimPrefix(srv.URL, "http")
		clientConn, _, err := ws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { clientConn.Close() })
		serverConn := <-ready
		return serverConn, clientConn
	}

	server1, client1 := dialPair()
	server2, client2 := dialPair()
	require.NoError(t, hub.Register(server1, "quiz-1"))
	require.NoError(t, hub.Register(server2, "quiz-1"))

	hub.Send(server1, domain.GameEvent{Type: domain.EventJoinSession, Body: "welcome"})

	event := readEvent(t, client1)
	assert.Equal(t, "welcome", event.Body)

	client2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := client2.ReadMessage()
	assert.Error(t, err, "direct send should not reach other room members")
}

func TestHub_UnregisterRemovesFromAllRooms(t *testing.T) {
	hub, dial := testHub(t, 100)

	conn := dial("quiz-1", "users:0xabc")
	require.True(t, waitForRoomCount(hub, "quiz-1", 1))

	conn.Close()
	require.True(t, waitForRoomCount(hub, "quiz-1", 0))
	require.True(t, waitForRoomCount(hub, "users:0xabc", 0))

	// Publishing into an empty room is a no-op.
	hub.Publish("quiz-1", domain.GameEvent{Type: domain.EventSessionEnded, Body: "done"})
	assert.Equal(t, 0, hub.RoomCount("quiz-1"))
}

func TestHub_MaxClientsPerRoom(t *testing.T) {
	hub := NewHub(clockwork.NewRealClock(), 2)
	t.Cleanup(func() { hub.Stop() })

	for i := 0; i < 2; i++ {
		server, _ := newTestConnPair(t)
		require.NoError(t, hub.Register(server, "quiz-1"), "client %d should register successfully", i)
	}
	assert.Equal(t, 2, hub.RoomCount("quiz-1"))

	server, _ := newTestConnPair(t)
	err := hub.Register(server, "quiz-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max clients per room")
	assert.Equal(t, 2, hub.RoomCount("quiz-1"))
}

func TestHub_RoomCountUnknownRoom(t *testing.T) {
	hub, _ := testHub(t, 100)
	assert.Equal(t, 0, hub.RoomCount("nobody-home"))
}

func TestHub_StopClosesClients(t *testing.T) {
	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *ws.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		ready <- conn
	}))
	t.Cleanup(func() { srv.Close() })

	hub := NewHub(clockwork.NewRealClock(), 100)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server := <-ready
	require.NoError(t, hub.Register(server, "quiz-1"))

	hub.Stop()

	client.SetReadDeadline(time.Now().Add(time.Second))
	for {
		if _, _, err := client.ReadMessage(); err != nil {
			break
		}
	}
}

func newTestConnPair(t *testing.T) (server *ws.Conn, client *ws.Conn) {
	t.Helper()
	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *ws.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		ready <- conn
	}))
	t.Cleanup(func() { srv.Close() })

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn := <-ready
	t.Cleanup(func() { serverConn.Close() })

	return serverConn, clientConn
}
