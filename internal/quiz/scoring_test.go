package quiz

import (
	"testing"
	"time"

	"ark-trip-service/internal/domain"
)

func TestScoreChoiceDecay(t *testing.T) {
	rules := DefaultRules()

	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 100},
		{5 * time.Second, 90},
		{20 * time.Second, 60},
		{29 * time.Second, 42},
		{45 * time.Second, 10}, // never below the floor
	}
	for _, c := range cases {
		if got := rules.Score(domain.QuestionText, true, c.elapsed); got != c.want {
			t.Fatalf("elapsed %v: got %d, want %d", c.elapsed, got, c.want)
		}
	}
}

func TestScoreWrongIsZero(t *testing.T) {
	rules := DefaultRules()
	if got := rules.Score(domain.QuestionText, false, 0); got != 0 {
		t.Fatalf("wrong choice: got %d, want 0", got)
	}
	if got := rules.Score(domain.QuestionInput, false, time.Second); got != 0 {
		t.Fatalf("wrong input: got %d, want 0", got)
	}
}

func TestScoreInputFlat(t *testing.T) {
	rules := DefaultRules()
	if got := rules.Score(domain.QuestionInput, true, 0); got != 50 {
		t.Fatalf("instant input: got %d, want 50", got)
	}
	if got := rules.Score(domain.QuestionInput, true, 25*time.Second); got != 50 {
		t.Fatalf("slow input: got %d, want 50", got)
	}
}
