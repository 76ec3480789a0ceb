package quiz

import (
	"math/rand"
	"time"
)

// Segment is one slice of the reward wheel.
type Segment struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// DefaultWheel returns the six stock segments, including the zero-point slice.
func DefaultWheel() []Segment {
	return []Segment{
		{Label: "10", Points: 10},
		{Label: "50", Points: 50},
		{Label: "100", Points: 100},
		{Label: "20", Points: 20},
		{Label: "حظ أوفر", Points: 0},
		{Label: "30", Points: 30},
	}
}

// Wheel picks a uniformly random segment per spin.
type Wheel struct {
	segments []Segment
	rnd      *rand.Rand
}

func NewWheel(segments []Segment) *Wheel {
	if len(segments) == 0 {
		segments = DefaultWheel()
	}
	return &Wheel{
		segments: segments,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (w *Wheel) Spin() Segment {
	return w.segments[w.rnd.Intn(len(w.segments))]
}
