// Package store holds created sessions in memory. Sessions are append-only:
// once scheduled they are never mutated, so readers can hold returned values
// without copying.
package store

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/haseeb5i/socket-task/internal/domain"
)

// TaskSpec is one task of a session creation request.
type TaskSpec struct {
	Body      string `json:"body"`
	TimeInSec int64  `json:"timeInSec"`
}

// SessionSpec is a session creation request. StartsAt is epoch milliseconds.
type SessionSpec struct {
	StartsAt    int64      `json:"startsAt"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Tasks       []TaskSpec `json:"tasks"`
}

// SessionStore is the in-memory session registry. Insertion order is list
// order.
type SessionStore struct {
	clock clockwork.Clock

	mu       sync.RWMutex
	sessions []domain.Session
	byID     map[string]int
}

func NewSessionStore(clock clockwork.Clock) *SessionStore {
	return &SessionStore{
		clock: clock,
		byID:  make(map[string]int),
	}
}

// Create validates the spec and appends a new session. The start time must be
// strictly in the future and every task duration non-negative. EndsAt is
// derived from the task durations; task ids are 1-based positions.
func (s *SessionStore) Create(spec SessionSpec) (domain.Session, error) {
	now := s.clock.Now().UnixMilli()
	if spec.StartsAt <= now {
		return domain.Session{}, fmt.Errorf("%w: start time must be in the future", domain.ErrInvalidSchedule)
	}

	var total int64
	tasks := make([]domain.SessionTask, len(spec.Tasks))
	for i, t := range spec.Tasks {
		if t.TimeInSec < 0 {
			return domain.Session{}, fmt.Errorf("%w: task %d has negative duration", domain.ErrInvalidSchedule, i+1)
		}
		tasks[i] = domain.SessionTask{
			ID:        strconv.Itoa(i + 1),
			Body:      t.Body,
			TimeInSec: t.TimeInSec,
		}
		total += t.TimeInSec
	}

	session := domain.Session{
		ID:          uuid.NewString(),
		StartsAt:    spec.StartsAt,
		EndsAt:      spec.StartsAt + total*1000,
		Title:       spec.Title,
		Description: spec.Description,
		Tasks:       tasks,
	}

	s.mu.Lock()
	s.byID[session.ID] = len(s.sessions)
	s.sessions = append(s.sessions, session)
	s.mu.Unlock()

	return session, nil
}

// Find returns the session with the given id.
func (s *SessionStore) Find(id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return s.sessions[idx], nil
}

// List returns all sessions in creation order.
func (s *SessionStore) List() []domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}
