package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/haseeb5i/socket-task/internal/domain"
	"github.com/haseeb5i/socket-task/internal/metrics"
)

const (
	commandTimeout  = 5 * time.Second  // actor command timeout
	dispatchTimeout = 30 * time.Second // reward dispatch timeout
	stopTimeout     = 10 * time.Second // graceful shutdown timeout
)

// schedulerCmd is the command interface for the Scheduler actor.
type schedulerCmd interface{ isSchedulerCmd() }

type baseSchedulerCmd struct{}

func (baseSchedulerCmd) isSchedulerCmd() {}

type armCmd struct {
	baseSchedulerCmd
	session domain.Session
}

type cancelCmd struct {
	baseSchedulerCmd
	sessionID string
}

type fireCmd struct {
	baseSchedulerCmd
	sessionID string
}

type snapshotCmd struct {
	baseSchedulerCmd
	replyChannel chan domain.ActiveSession
}

type submitCmd struct {
	baseSchedulerCmd
	wallet       string
	taskID       string
	answer       string
	errorChannel chan error
}

type stopCmd struct {
	baseSchedulerCmd
}

// armedSession is one session's remaining transition schedule. Only one
// timer is pending at a time: the next transition is armed after the current
// one applies, so a session's fires can never reorder or run concurrently.
type armedSession struct {
	session   domain.Session
	events    []PlannedEvent
	deadlines []time.Time // absolute fire times, parallel to events
	next      int
	timer     clockwork.Timer
}

// Scheduler arms timed transitions for sessions and owns all live game
// state: the active-session projection, the answer records, and the armed
// timer registry. It runs as a single goroutine fed by a command channel, so
// every mutation is serialized without locks; timer fires re-enter through
// the same channel.
type Scheduler struct {
	cmdCh       chan schedulerCmd
	clock       clockwork.Clock
	broadcaster domain.Broadcaster
	rewards     domain.RewardDispatcher
	policy      domain.WinnerPolicy

	active    domain.ActiveSession
	collector *answerCollector
	armed     map[string]*armedSession

	done chan struct{}
}

// NewScheduler creates a scheduler and starts its actor goroutine.
func NewScheduler(broadcaster domain.Broadcaster, rewards domain.RewardDispatcher, policy domain.WinnerPolicy, clock clockwork.Clock) *Scheduler {
	s := &Scheduler{
		cmdCh:       make(chan schedulerCmd, 256),
		clock:       clock,
		broadcaster: broadcaster,
		rewards:     rewards,
		policy:      policy,
		collector:   newAnswerCollector(),
		armed:       make(map[string]*armedSession),
		done:        make(chan struct{}),
	}
	go s.run()
	return s
}

// Arm plans and schedules all transitions for a freshly created session.
// There is no immediate broadcast; the first observable effect is the
// SESSION_START fire.
func (s *Scheduler) Arm(session domain.Session) {
	s.cmdCh <- armCmd{session: session}
}

// Cancel drops a session's not-yet-fired transitions as a unit. Transitions
// that already fired are not rolled back.
func (s *Scheduler) Cancel(sessionID string) {
	s.cmdCh <- cancelCmd{sessionID: sessionID}
}

// Snapshot returns the current active-session projection. Reads have no side
// effects; the zero value means nothing is live. Returns the zero value if
// the command times out.
func (s *Scheduler) Snapshot() domain.ActiveSession {
	replyCh := make(chan domain.ActiveSession, 1)
	s.cmdCh <- snapshotCmd{replyChannel: replyCh}

	timer := s.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case snap := <-replyCh:
		return snap
	case <-timer.Chan():
		slog.Warn("Snapshot timed out", "timeout", commandTimeout)
		return domain.ActiveSession{}
	}
}

// SubmitAnswer records a participant's answer for the currently active task.
// Returns domain.ErrStaleTask when taskID is not the live task; the caller
// decides whether to surface that (the socket transport drops it silently).
func (s *Scheduler) SubmitAnswer(wallet, taskID, answer string) error {
	errCh := make(chan error, 1)
	s.cmdCh <- submitCmd{wallet: wallet, taskID: taskID, answer: answer, errorChannel: errCh}

	timer := s.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("submit command timed out after %v", commandTimeout)
	}
}

// Stop shuts down the scheduler, dropping all armed transitions.
// Blocks until the actor goroutine has exited or timeout is reached.
func (s *Scheduler) Stop() {
	s.cmdCh <- stopCmd{}

	timeout := s.clock.NewTimer(stopTimeout)
	defer timeout.Stop()

	select {
	case <-s.done:
		slog.Info("Scheduler stopped gracefully")
	case <-timeout.Chan():
		slog.Warn("Scheduler stop timeout exceeded, forcing exit", "timeout", stopTimeout)
		close(s.done)
	}
}

func (s *Scheduler) run() {
	defer close(s.done)

	for cmd := range s.cmdCh {
		switch c := cmd.(type) {
		case armCmd:
			s.handleArm(c.session)
		case cancelCmd:
			s.handleCancel(c.sessionID)
		case fireCmd:
			s.handleFire(c.sessionID)
		case snapshotCmd:
			c.replyChannel <- s.active
		case submitCmd:
			c.errorChannel <- s.handleSubmit(c.wallet, c.taskID, c.answer)
		case stopCmd:
			s.handleStop()
			return
		default:
			slog.Warn("Scheduler received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (s *Scheduler) handleArm(session domain.Session) {
	now := s.clock.Now()
	events := Plan(session, now.UnixMilli())
	sortEvents(events)

	arm := &armedSession{
		session:   session,
		events:    events,
		deadlines: make([]time.Time, len(events)),
	}
	for i, ev := range events {
		arm.deadlines[i] = now.Add(ev.Delay)
	}
	s.armed[session.ID] = arm
	s.armNext(arm)

	metrics.SchedulerArmedSessions.Set(float64(len(s.armed)))
	slog.Info("Session armed", "session_id", session.ID, "transitions", len(events))
}

// armNext schedules the timer for the session's next pending transition.
// The delay is recomputed from the absolute deadline so chained arming does
// not accumulate drift; overdue transitions fire immediately.
func (s *Scheduler) armNext(arm *armedSession) {
	d := arm.deadlines[arm.next].Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	sessionID := arm.session.ID
	arm.timer = s.clock.AfterFunc(d, func() {
		s.cmdCh <- fireCmd{sessionID: sessionID}
	})
}

func (s *Scheduler) handleCancel(sessionID string) {
	arm, ok := s.armed[sessionID]
	if !ok {
		return
	}
	arm.timer.Stop()
	delete(s.armed, sessionID)
	metrics.SchedulerArmedSessions.Set(float64(len(s.armed)))
	slog.Info("Session schedule canceled", "session_id", sessionID)
}

func (s *Scheduler) handleFire(sessionID string) {
	arm, ok := s.armed[sessionID]
	if !ok {
		return // canceled after the timer fired
	}

	ev := arm.events[arm.next]
	s.applyTransition(arm.session, ev)

	arm.next++
	if arm.next < len(arm.events) {
		s.armNext(arm)
		return
	}
	delete(s.armed, sessionID)
	metrics.SchedulerArmedSessions.Set(float64(len(s.armed)))
}

// applyTransition runs one state-machine step. A panicking step is isolated:
// it must never take down the actor or abort later transitions.
func (s *Scheduler) applyTransition(session domain.Session, ev PlannedEvent) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Transition handler panic recovered", "session_id", session.ID, "transition", ev.Kind, "panic", r)
			metrics.SchedulerPanicsTotal.Inc()
		}
	}()

	metrics.SchedulerTransitionsTotal.WithLabelValues(string(ev.Kind)).Inc()

	switch ev.Kind {
	case SessionStart:
		s.fireSessionStart(session)
	case SessionEnd:
		s.fireSessionEnd(session)
	case TaskStart:
		s.fireTaskStart(session, ev.TaskID)
	case TaskEnd:
		s.fireTaskEnd(session, ev.TaskID)
	}
}

func (s *Scheduler) fireSessionStart(session domain.Session) {
	slog.Info("Game session started", "session_id", session.ID)

	s.active = domain.ActiveSession{
		SessionID:   session.ID,
		Description: session.Title,
		EndsAt:      session.EndsAt,
	}

	s.broadcaster.Publish(session.ID, domain.GameEvent{
		Type:     domain.EventSessionStarted,
		Body:     "Game session has started",
		Duration: session.EndsAt - s.clock.Now().UnixMilli(),
	})
}

func (s *Scheduler) fireTaskStart(session domain.Session, taskID string) {
	task, ok := session.Task(taskID)
	if !ok {
		slog.Error("Planned task missing from session", "session_id", session.ID, "task_id", taskID)
		return
	}

	slog.Info("Task started", "session_id", session.ID, "task_id", taskID)

	// Only gate answers while this session is the live one; a zero-duration
	// trailing task can start after its session already ended.
	if s.active.SessionID == session.ID {
		end := task.TimeInSec - 1
		if end < 0 {
			end = 0
		}
		s.active.ActiveTaskID = taskID
		s.active.TaskEndsAt = s.clock.Now().UnixMilli() + end*1000
	}

	s.broadcaster.Publish(session.ID, domain.GameEvent{
		Type:     domain.EventTaskStarted,
		ID:       task.ID,
		Body:     task.Body,
		Duration: task.TimeInSec,
	})
}

func (s *Scheduler) fireTaskEnd(session domain.Session, taskID string) {
	task, ok := session.Task(taskID)
	if !ok {
		slog.Error("Planned task missing from session", "session_id", session.ID, "task_id", taskID)
		return
	}

	slog.Info("Task ended", "session_id", session.ID, "task_id", taskID)

	// Clear the gate so late joiners between tasks are not told a task is
	// still running and stragglers cannot keep answering an ended task.
	if s.active.SessionID == session.ID && s.active.ActiveTaskID == taskID {
		s.active.ActiveTaskID = ""
		s.active.TaskEndsAt = 0
	}

	s.broadcaster.Publish(session.ID, domain.GameEvent{
		Type: domain.EventTaskEnded,
		Body: task.Body,
	})
}

func (s *Scheduler) fireSessionEnd(session domain.Session) {
	slog.Info("Game session ended", "session_id", session.ID)

	s.active = domain.ActiveSession{}

	entries := s.collector.entries()
	s.collector.reset()

	if wallet, ok := s.policy.Winner(entries); ok {
		// Fire-and-report: the event timeline never waits on the payout.
		go s.dispatchReward(wallet)
	}

	s.broadcaster.Publish(session.ID, domain.GameEvent{
		Type: domain.EventSessionEnded,
		Body: "Game session has ended",
	})
}

func (s *Scheduler) dispatchReward(wallet string) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	txRef, err := s.rewards.Dispatch(ctx, wallet)
	if err != nil {
		slog.Error("Reward dispatch failed", "wallet", wallet, "error", err)
		metrics.RewardsTotal.WithLabelValues("failure").Inc()
		return
	}

	slog.Info("Participant rewarded", "wallet", wallet, "tx_ref", txRef)
	metrics.RewardsTotal.WithLabelValues("success").Inc()

	s.broadcaster.Publish(domain.UserRoom(wallet), domain.GameEvent{
		Type: domain.EventReward,
		Body: fmt.Sprintf("You won! Transaction hash: %s", txRef),
	})
}

func (s *Scheduler) handleSubmit(wallet, taskID, answer string) error {
	if s.active.ActiveTaskID == "" || taskID != s.active.ActiveTaskID {
		metrics.AnswersTotal.WithLabelValues("rejected").Inc()
		return domain.ErrStaleTask
	}

	s.collector.record(wallet, taskID, answer)
	metrics.AnswersTotal.WithLabelValues("accepted").Inc()
	return nil
}

func (s *Scheduler) handleStop() {
	for id, arm := range s.armed {
		arm.timer.Stop()
		delete(s.armed, id)
	}
	metrics.SchedulerArmedSessions.Set(0)
	slog.Info("Scheduler shutting down")
}

// sortEvents orders transitions chronologically. Ties break on transition
// kind so a start never trails the thing it starts: SESSION_START first,
// then TASK_START/TASK_END as planned, SESSION_END last.
func sortEvents(events []PlannedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Delay != events[j].Delay {
			return events[i].Delay < events[j].Delay
		}
		return kindRank(events[i].Kind) < kindRank(events[j].Kind)
	})
}

func kindRank(k Transition) int {
	switch k {
	case SessionStart:
		return 0
	case TaskStart:
		return 1
	case TaskEnd:
		return 2
	default: // SessionEnd
		return 3
	}
}
