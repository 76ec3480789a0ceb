package quiz

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"ark-trip-service/internal/domain"
)

func choiceQuestion() domain.ActiveQuestion {
	return domain.ActiveQuestion{
		Question: domain.Question{
			ID:           "q1",
			Text:         "2 + 2 = ?",
			Options:      []string{"3", "4", "5"},
			CorrectIndex: 1,
			Type:         domain.QuestionText,
		},
		TriggeredAt: 1000,
	}
}

func inputQuestion() domain.ActiveQuestion {
	return domain.ActiveQuestion{
		Question: domain.Question{
			ID:      "q2",
			Text:    "أطول نهر؟",
			Options: []string{"النيل"},
			Type:    domain.QuestionInput,
		},
		TriggeredAt: 2000,
	}
}

func TestRoundCorrectChoice(t *testing.T) {
	clock := clockwork.NewFakeClock()
	round := NewRound(choiceQuestion(), DefaultRules(), clock, false)

	clock.Advance(5 * time.Second)
	result, err := round.Submit(domain.AnswerSubmission{QuestionID: "q1", SelectedIndex: 1})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct {
		t.Fatal("expected correct")
	}
	if result.Awarded != 90 {
		t.Fatalf("awarded %d, want 90", result.Awarded)
	}
	if round.Phase() != PhaseRevealedCorrect {
		t.Fatalf("phase %v, want revealed correct", round.Phase())
	}
}

func TestRoundWrongChoiceAwardsNothing(t *testing.T) {
	clock := clockwork.NewFakeClock()
	round := NewRound(choiceQuestion(), DefaultRules(), clock, false)

	result, err := round.Submit(domain.AnswerSubmission{QuestionID: "q1", SelectedIndex: 0})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Correct || result.Awarded != 0 {
		t.Fatalf("wrong answer scored: %+v", result)
	}
	if round.Phase() != PhaseRevealedIncorrect {
		t.Fatalf("phase %v, want revealed incorrect", round.Phase())
	}
}

func TestRoundSecondSubmitRejected(t *testing.T) {
	clock := clockwork.NewFakeClock()
	round := NewRound(choiceQuestion(), DefaultRules(), clock, false)

	if _, err := round.Submit(domain.AnswerSubmission{SelectedIndex: 1}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := round.Submit(domain.AnswerSubmission{SelectedIndex: 1})
	if !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("second submit err = %v, want ErrAlreadyAnswered", err)
	}
}

func TestRoundStartsLockedWhenAlreadyAnswered(t *testing.T) {
	clock := clockwork.NewFakeClock()
	round := NewRound(choiceQuestion(), DefaultRules(), clock, true)

	if round.Phase() != PhaseLocked {
		t.Fatalf("phase %v, want locked", round.Phase())
	}
	_, err := round.Submit(domain.AnswerSubmission{SelectedIndex: 1})
	if !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("err = %v, want ErrAlreadyAnswered", err)
	}
}

func TestRoundLateSubmitRejected(t *testing.T) {
	clock := clockwork.NewFakeClock()
	round := NewRound(choiceQuestion(), DefaultRules(), clock, false)

	clock.Advance(31 * time.Second)
	_, err := round.Submit(domain.AnswerSubmission{SelectedIndex: 1})
	if !errors.Is(err, domain.ErrRoundOver) {
		t.Fatalf("err = %v, want ErrRoundOver", err)
	}
	if round.Phase() != PhaseTimedOut {
		t.Fatalf("phase %v, want timed out", round.Phase())
	}
}

func TestRoundInputMatching(t *testing.T) {
	clock := clockwork.NewFakeClock()
	round := NewRound(inputQuestion(), DefaultRules(), clock, false)

	clock.Advance(10 * time.Second)
	result, err := round.Submit(domain.AnswerSubmission{QuestionID: "q2", Text: " النيل. "})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct {
		t.Fatal("normalized answer should match")
	}
	if result.Awarded != 50 {
		t.Fatalf("awarded %d, want flat 50", result.Awarded)
	}
}

func TestRoundExpireReportsOnlyForInput(t *testing.T) {
	clock := clockwork.NewFakeClock()

	choice := NewRound(choiceQuestion(), DefaultRules(), clock, false)
	if _, report := choice.Expire(); report {
		t.Fatal("choice expiry must not auto-report")
	}
	if choice.Phase() != PhaseTimedOut {
		t.Fatalf("phase %v, want timed out", choice.Phase())
	}

	input := NewRound(inputQuestion(), DefaultRules(), clock, false)
	result, report := input.Expire()
	if !report {
		t.Fatal("input expiry must auto-report")
	}
	if result.Correct || result.Awarded != 0 {
		t.Fatalf("expiry result = %+v, want zero", result)
	}
}

func TestRoundRemaining(t *testing.T) {
	clock := clockwork.NewFakeClock()
	round := NewRound(choiceQuestion(), DefaultRules(), clock, false)

	if got := round.Remaining(); got != 30*time.Second {
		t.Fatalf("remaining %v, want 30s", got)
	}
	clock.Advance(12 * time.Second)
	if got := round.Remaining(); got != 18*time.Second {
		t.Fatalf("remaining %v, want 18s", got)
	}
	clock.Advance(time.Minute)
	if got := round.Remaining(); got != 0 {
		t.Fatalf("remaining %v, want 0", got)
	}
	if round.Answerable() {
		t.Fatal("expired round must not be answerable")
	}
}
