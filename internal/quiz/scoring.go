package quiz

import (
	"time"

	"ark-trip-service/internal/domain"
)

// Rules capture the scoring policy for live rounds. Wrong or timed-out
// answers are always worth zero; there is no deduction path.
type Rules struct {
	Countdown   time.Duration // full timer for one round
	ChoiceMax   int           // ceiling for an instant correct choice
	ChoiceFloor int           // minimum for a correct choice
	DecayPerSec int           // points lost per elapsed second
	InputReward int           // flat reward for a correct typed answer
	HomeDelay   time.Duration // automatic return to home after scoring in live view
}

// DefaultRules returns the stock event policy: 30 s countdown, choice reward
// decaying from 100 by 2/s floored at 10, flat 50 for typed answers.
func DefaultRules() Rules {
	return Rules{
		Countdown:   30 * time.Second,
		ChoiceMax:   100,
		ChoiceFloor: 10,
		DecayPerSec: 2,
		InputReward: 50,
		HomeDelay:   2500 * time.Millisecond,
	}
}

// Score returns the points awarded for a submission with the given outcome
// and elapsed time since the round started.
func (r Rules) Score(qt domain.QuestionType, correct bool, elapsed time.Duration) int {
	if !correct {
		return 0
	}
	// Typing takes effort; input questions are not punished for time.
	if qt == domain.QuestionInput {
		return r.InputReward
	}
	points := r.ChoiceMax - int(elapsed/time.Second)*r.DecayPerSec
	if points < r.ChoiceFloor {
		return r.ChoiceFloor
	}
	return points
}
