// Package game implements the session scheduler and broadcast state machine.
//
// The Scheduler runs as an actor: single goroutine + command channel (no mutexes).
// Timer fires re-enter through the command channel, so a session's transitions apply
// in planned order: SESSION_START, interleaved TASK_START/TASK_END, SESSION_END.
// Timers come from an injected clockwork clock, so tests advance virtual time.
package game
