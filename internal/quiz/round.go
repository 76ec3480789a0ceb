package quiz

import (
	"time"

	"github.com/jonboulle/clockwork"

	"ark-trip-service/internal/domain"
)

// Phase is the participant-local state of the live round.
type Phase int

const (
	// PhaseWaiting means no question is broadcast.
	PhaseWaiting Phase = iota
	// PhaseAnswering means the countdown is running and input is open.
	PhaseAnswering
	// PhaseLocked means the question id was already answered earlier.
	PhaseLocked
	// PhaseRevealedCorrect and PhaseRevealedIncorrect follow a submission.
	PhaseRevealedCorrect
	PhaseRevealedIncorrect
	// PhaseTimedOut means the countdown reached zero with no submission.
	PhaseTimedOut
)

// Round tracks one participant's progress through the active question.
// A round is keyed by (id, triggeredAt): a re-send of the same id with a new
// triggeredAt starts a fresh round and restarts the clock, while an id already
// recorded in the answered set starts locked regardless of the timer.
type Round struct {
	question  domain.ActiveQuestion
	rules     Rules
	clock     clockwork.Clock
	startedAt time.Time
	phase     Phase
}

func NewRound(q domain.ActiveQuestion, rules Rules, clock clockwork.Clock, alreadyAnswered bool) *Round {
	phase := PhaseAnswering
	if alreadyAnswered {
		phase = PhaseLocked
	}
	return &Round{
		question:  q,
		rules:     rules,
		clock:     clock,
		startedAt: clock.Now(),
		phase:     phase,
	}
}

func (r *Round) Question() domain.ActiveQuestion { return r.question }

func (r *Round) Phase() Phase { return r.phase }

// Matches reports whether a snapshot refers to this same trigger.
func (r *Round) Matches(q domain.ActiveQuestion) bool {
	return r.question.ID == q.ID && r.question.TriggeredAt == q.TriggeredAt
}

func (r *Round) Elapsed() time.Duration {
	return r.clock.Since(r.startedAt)
}

func (r *Round) Remaining() time.Duration {
	remaining := r.rules.Countdown - r.Elapsed()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Answerable reports whether a submission would still be accepted.
func (r *Round) Answerable() bool {
	return r.phase == PhaseAnswering && r.Remaining() > 0
}

// Submit scores the submission and locks further input.
func (r *Round) Submit(sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	switch r.phase {
	case PhaseLocked, PhaseRevealedCorrect, PhaseRevealedIncorrect:
		return domain.AnswerResult{}, domain.ErrAlreadyAnswered
	case PhaseTimedOut:
		return domain.AnswerResult{}, domain.ErrRoundOver
	}
	elapsed := r.Elapsed()
	if elapsed >= r.rules.Countdown {
		r.phase = PhaseTimedOut
		return domain.AnswerResult{}, domain.ErrRoundOver
	}

	var correct bool
	if r.question.Type == domain.QuestionInput {
		correct = Match(sub.Text, r.question.Answer())
	} else {
		correct = sub.SelectedIndex == r.question.CorrectIndex
	}

	if correct {
		r.phase = PhaseRevealedCorrect
	} else {
		r.phase = PhaseRevealedIncorrect
	}
	return domain.AnswerResult{
		QuestionID:   r.question.ID,
		Correct:      correct,
		CorrectIndex: r.question.CorrectIndex,
		Awarded:      r.rules.Score(r.question.Type, correct, elapsed),
	}, nil
}

// Expire moves an unanswered round to timed out. For input questions it
// returns a zero-point auto-submission so the participant is not stuck
// waiting for a reveal; the second return value reports whether that
// result should be propagated.
func (r *Round) Expire() (domain.AnswerResult, bool) {
	if r.phase != PhaseAnswering {
		return domain.AnswerResult{}, false
	}
	r.phase = PhaseTimedOut
	if r.question.Type == domain.QuestionInput {
		return domain.AnswerResult{
			QuestionID:   r.question.ID,
			Correct:      false,
			CorrectIndex: r.question.CorrectIndex,
			Awarded:      0,
		}, true
	}
	return domain.AnswerResult{}, false
}
