package domain

// Game event types pushed to rooms over the socket transport.
const (
	EventSessionStarted = "SESSION_STARTED"
	EventSessionEnded   = "SESSION_ENDED"
	EventTaskStarted    = "TASK_STARTED"
	EventTaskEnded      = "TASK_ENDED"
	EventTaskActive     = "TASK_ACTIVE"
	EventReward         = "REWARD"
	EventJoinSession    = "JOIN_SESSION"
)

// GameEvent is the wire format for all room broadcasts.
// ID and Duration are only set for task events.
type GameEvent struct {
	Type     string `json:"type"`
	Body     string `json:"body"`
	ID       string `json:"id,omitempty"`
	Duration int64  `json:"duration,omitempty"`
}

// Broadcaster fans a game event out to the current subscribers of a room.
// Delivery is at-most-once and best-effort; clients that join late pull the
// active-session snapshot instead.
type Broadcaster interface {
	Publish(room string, event GameEvent)
}

// UserRoom names the private delivery room for a wallet.
func UserRoom(wallet string) string {
	return "users:" + wallet
}
