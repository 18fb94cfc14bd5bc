package domain

// SessionTask is one timed phase of a session. Task IDs are 1-based
// positional strings assigned at creation and never change afterwards.
type SessionTask struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	TimeInSec int64  `json:"timeInSec"`
}

// Session is a scheduled, time-bounded sequence of tasks.
// StartsAt and EndsAt are epoch milliseconds; EndsAt is always derived as
// StartsAt plus the sum of all task durations.
type Session struct {
	ID          string        `json:"id"`
	StartsAt    int64         `json:"startsAt"`
	EndsAt      int64         `json:"endsAt"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Tasks       []SessionTask `json:"tasks"`
}

// Task returns the task with the given id, or false when no such task exists.
func (s Session) Task(id string) (SessionTask, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return SessionTask{}, false
}

// ActiveSession is the single live projection of "what is happening right
// now". The zero value means no session is live. ActiveTaskID non-empty
// implies SessionID non-empty.
type ActiveSession struct {
	SessionID    string `json:"sessionId"`
	Description  string `json:"description"`
	EndsAt       int64  `json:"endsAt"`
	ActiveTaskID string `json:"activeTaskId"`
	TaskEndsAt   int64  `json:"taskEndsAt"`
}

// Live reports whether a session is currently in progress.
func (a ActiveSession) Live() bool {
	return a.SessionID != ""
}
