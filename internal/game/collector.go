package game

import "github.com/haseeb5i/socket-task/internal/domain"

// answerCollector records participant answers for the live session, keyed by
// wallet and task. It is owned by the Scheduler actor and must only be
// touched from its goroutine; insertion order of first answers is preserved
// for the winner policy.
type answerCollector struct {
	order   []string
	answers map[string]map[string]string
}

func newAnswerCollector() *answerCollector {
	return &answerCollector{answers: make(map[string]map[string]string)}
}

// record stores an answer. The caller has already gated the task id against
// the active session.
func (c *answerCollector) record(wallet, taskID, answer string) {
	byTask, ok := c.answers[wallet]
	if !ok {
		byTask = make(map[string]string)
		c.answers[wallet] = byTask
		c.order = append(c.order, wallet)
	}
	byTask[taskID] = answer
}

// entries returns all records in first-submission order.
func (c *answerCollector) entries() []domain.AnswerEntry {
	out := make([]domain.AnswerEntry, 0, len(c.order))
	for _, wallet := range c.order {
		out = append(out, domain.AnswerEntry{Wallet: wallet, Answers: c.answers[wallet]})
	}
	return out
}

// reset clears all records. Called when the owning session ends.
func (c *answerCollector) reset() {
	c.order = nil
	c.answers = make(map[string]map[string]string)
}
