package game

import (
	"time"

	"github.com/haseeb5i/socket-task/internal/domain"
)

// Transition identifies a scheduled state-machine step.
type Transition string

const (
	SessionStart Transition = "SESSION_START"
	SessionEnd   Transition = "SESSION_END"
	TaskStart    Transition = "TASK_START"
	TaskEnd      Transition = "TASK_END"
)

// startLeadTime is how far ahead of the nominal moment start transitions
// fire, so the broadcast reaches clients before the phase actually begins.
// Task ends use the same skew via the (timeInSec-1) rule.
const startLeadTime = time.Second

// PlannedEvent is one timed transition, expressed as a delay from plan time.
type PlannedEvent struct {
	Delay  time.Duration
	Kind   Transition
	TaskID string
}

// Plan computes the full ordered transition schedule for a session. now is
// epoch milliseconds at plan time; delays are relative to it, never negative.
//
// The session start fires one second early to mask delivery latency, and each
// task end fires one second before its nominal duration elapses. A zero
// duration task would otherwise plan its end in the past; such delays are
// clamped to fire immediately.
func Plan(session domain.Session, now int64) []PlannedEvent {
	events := make([]PlannedEvent, 0, 2+2*len(session.Tasks))

	events = append(events,
		PlannedEvent{Delay: clamp(session.StartsAt - now - startLeadTime.Milliseconds()), Kind: SessionStart},
		PlannedEvent{Delay: clamp(session.EndsAt - now), Kind: SessionEnd},
	)

	cursor := session.StartsAt
	for _, task := range session.Tasks {
		startMs := cursor - now
		endMs := startMs + (task.TimeInSec-1)*1000
		events = append(events,
			PlannedEvent{Delay: clamp(startMs), Kind: TaskStart, TaskID: task.ID},
			PlannedEvent{Delay: clamp(endMs), Kind: TaskEnd, TaskID: task.ID},
		)
		cursor += task.TimeInSec * 1000
	}

	return events
}

func clamp(ms int64) time.Duration {
	if ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
