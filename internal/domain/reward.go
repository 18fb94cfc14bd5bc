package domain

import "context"

// RewardDispatcher triggers a payout to a participant's wallet and returns a
// transaction reference. Dispatch is asynchronous from the caller's point of
// view: failures are reported, never retried.
type RewardDispatcher interface {
	Dispatch(ctx context.Context, wallet string) (txRef string, err error)
}

// AnswerEntry is one participant's recorded answers, in submission order of
// the participant's first answer.
type AnswerEntry struct {
	Wallet  string
	Answers map[string]string // task id -> answer text
}

// WinnerPolicy selects the reward recipient among the session's answer
// entries. Entries arrive ordered by first submission.
type WinnerPolicy interface {
	Winner(entries []AnswerEntry) (wallet string, ok bool)
}

// FirstSubmitterPolicy rewards whoever answered anything first. Answer
// correctness is never checked; swap in a scoring policy to change that.
type FirstSubmitterPolicy struct{}

func (FirstSubmitterPolicy) Winner(entries []AnswerEntry) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}
	return entries[0].Wallet, true
}
