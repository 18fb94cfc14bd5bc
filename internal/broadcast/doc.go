// Package broadcast implements the room-addressed WebSocket hub using the actor pattern.
//
// The Hub fans game events out to every subscriber of a room. One room exists per
// session plus a private room per wallet. Uses single goroutine + command channel
// (no mutexes). Per-connection write goroutines handle slow clients gracefully.
package broadcast
