package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"ark-trip-service/internal/app"
	"ark-trip-service/internal/domain"
	"ark-trip-service/internal/quiz"
)

// SpinCooldown is the minimum wall-clock gap between two reward-wheel spins.
const SpinCooldown = 60 * time.Second

// View mirrors the client's current screen; score-delta behavior depends on
// whether the participant is inside the live-question view.
type View string

const (
	ViewHome        View = "HOME"
	ViewLive        View = "LIVE_QUIZ"
	ViewLeaderboard View = "LEADERBOARD"
	ViewAdmin       View = "ADMIN"
)

// Outbound is one frame destined for the device.
type Outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorFrame(msg string) Outbound {
	return Outbound{Type: "error", Payload: errorPayload{Message: msg}}
}

// Controller bridges the shared hub into one device's view state: it consumes
// the typed event stream, deduplicates triggers, applies optimistic score
// updates, and reconciles them against authoritative snapshots.
//
// All methods must be called from a single goroutine; the transport
// serializes hub events, inbound frames, and timer expirations into that one
// routine.
type Controller struct {
	svc   *app.TripService
	clock clockwork.Clock
	rules quiz.Rules
	wheel *quiz.Wheel
	log   zerolog.Logger

	user        domain.User
	score       int
	view        View
	round       *quiz.Round
	answered    map[string]bool
	leaderboard domain.Leaderboard

	questionSeen TriggerMarker
	commandSeen  CommandMarker
	homePending  bool
}

func New(svc *app.TripService, user domain.User, clock clockwork.Clock, rules quiz.Rules, wheel *quiz.Wheel, log zerolog.Logger) *Controller {
	return &Controller{
		svc:      svc,
		clock:    clock,
		rules:    rules,
		wheel:    wheel,
		log:      log,
		user:     user,
		score:    user.Score,
		view:     ViewHome,
		answered: make(map[string]bool),
	}
}

func (c *Controller) User() domain.User { return c.user }

func (c *Controller) Score() int { return c.score }

func (c *Controller) View() View { return c.view }

// Bootstrap returns the frames that open a session.
func (c *Controller) Bootstrap() []Outbound {
	return []Outbound{{Type: "joined", Payload: c.user}}
}

// SetView tracks the client's screen changes.
func (c *Controller) SetView(v View) {
	c.view = v
}

// ApplyEvent folds one hub snapshot into the local view state and returns
// the frames to push down to the device.
func (c *Controller) ApplyEvent(ev app.Event) []Outbound {
	switch ev.Type {
	case app.EventUsers:
		return c.applyUsers(ev.Users)
	case app.EventQuestion:
		return c.applyQuestion(ev.Question)
	case app.EventCommand:
		return c.applyCommand(ev.Command)
	case app.EventMessages:
		// The message log feeds the host console only.
		if !c.user.IsAdmin {
			return nil
		}
		return []Outbound{{Type: "messages", Payload: ev.Messages}}
	case app.EventTripCode:
		if !c.user.IsAdmin {
			return nil
		}
		return []Outbound{{Type: "tripCode", Payload: ev.TripCode}}
	}
	return nil
}

func (c *Controller) applyUsers(users []domain.User) []Outbound {
	lb, next, changed := ReconcileUsers(c.user, users, c.clock.Now().UnixMilli())
	c.leaderboard = lb
	frames := []Outbound{{Type: "leaderboard", Payload: lb}}
	if changed {
		c.user = next
		c.score = next.Score
		frames = append(frames, Outbound{Type: "self", Payload: next})
	}
	return frames
}

func (c *Controller) applyQuestion(q *domain.ActiveQuestion) []Outbound {
	if q == nil {
		c.questionSeen.Observe(nil)
		c.round = nil
		return []Outbound{{Type: "question"}}
	}
	frames := []Outbound{{Type: "question", Payload: q}}
	if c.questionSeen.Observe(q) {
		c.round = quiz.NewRound(*q, c.rules, c.clock, c.answered[q.ID])
		frames = append(frames, Outbound{Type: "notify", Payload: questionEffect()})
	}
	// Re-delivery of the identical (id, triggeredAt) pair neither restarts
	// the round nor re-fires the alert.
	return frames
}

func (c *Controller) applyCommand(cmd *domain.AdminCommand) []Outbound {
	frames := []Outbound{{Type: "command", Payload: cmd}}
	if c.commandSeen.Observe(cmd) {
		frames = append(frames, Outbound{Type: "notify", Payload: commandEffect(cmd.Text)})
	}
	return frames
}

// RoundPhase exposes the live round's state for the transport and tests.
func (c *Controller) RoundPhase() (quiz.Phase, bool) {
	if c.round == nil {
		return quiz.PhaseWaiting, false
	}
	return c.round.Phase(), true
}

// Countdown returns the remaining answer window of an open round.
func (c *Controller) Countdown() (time.Duration, bool) {
	if c.round == nil || !c.round.Answerable() {
		return 0, false
	}
	return c.round.Remaining(), true
}

// HomePending consumes a scheduled automatic return to the home view.
func (c *Controller) HomePending() (time.Duration, bool) {
	if !c.homePending {
		return 0, false
	}
	c.homePending = false
	return c.rules.HomeDelay, true
}

// ReturnHome fires the scheduled view change after a live-round score.
func (c *Controller) ReturnHome() []Outbound {
	if c.view != ViewLive {
		return nil
	}
	c.view = ViewHome
	return []Outbound{{Type: "view", Payload: ViewHome}}
}

// SubmitAnswer scores a submission against the live round, plays the
// feedback tone, and applies the resulting score delta.
func (c *Controller) SubmitAnswer(ctx context.Context, sub domain.AnswerSubmission) ([]Outbound, error) {
	if c.round == nil {
		return nil, domain.ErrNoActiveQuestion
	}
	result, err := c.round.Submit(sub)
	if err != nil {
		return nil, err
	}

	tone := "wrong"
	if result.Correct {
		tone = "correct"
	}
	frames := []Outbound{{Type: "notify", Payload: toneEffect(tone)}}
	frames = append(frames, c.applyScoreDelta(ctx, result.Awarded, true)...)
	result.TotalScore = c.score
	frames = append(frames, Outbound{Type: "answerResult", Payload: result})
	return frames, nil
}

// ExpireRound handles the countdown reaching zero. Input-type rounds
// auto-report a zero-point result so the participant is not stuck.
func (c *Controller) ExpireRound(_ context.Context) []Outbound {
	if c.round == nil {
		return nil
	}
	result, report := c.round.Expire()
	if !report {
		return nil
	}
	result.TotalScore = c.score
	return []Outbound{{Type: "answerResult", Payload: result}}
}

// Spin runs the reward wheel: refused inside the cooldown window, a positive
// prize goes through the score-delta path, and lastSpinTime is stamped
// unconditionally.
func (c *Controller) Spin(ctx context.Context) ([]Outbound, error) {
	now := c.clock.Now().UnixMilli()
	if c.user.LastSpinTime > 0 && now-c.user.LastSpinTime < SpinCooldown.Milliseconds() {
		return nil, domain.ErrSpinCooldown
	}

	seg := c.wheel.Spin()
	var frames []Outbound
	if seg.Points > 0 {
		frames = append(frames, c.applyScoreDelta(ctx, seg.Points, false)...)
	}
	c.user.LastSpinTime = now
	if err := c.svc.StampSpin(ctx, c.user.ID, now); err != nil {
		c.log.Warn().Err(err).Msg("spin stamp write failed")
		frames = append(frames, errorFrame(err.Error()))
	}
	frames = append(frames, Outbound{Type: "spinResult", Payload: domain.SpinResult{
		Label:      seg.Label,
		Points:     seg.Points,
		TotalScore: c.score,
	}})
	return frames, nil
}

// SendMessage forwards a message to the host log and returns the stored
// record for the delivery ack.
func (c *Controller) SendMessage(ctx context.Context, text string) (domain.AdminMessage, error) {
	return c.svc.AppendMessage(ctx, c.user.ID, c.user.Name, text)
}

// applyScoreDelta is the single scoring path. Non-positive deltas are a
// no-op: the system has no score-deduction path. A positive delta is applied
// optimistically, pushed remotely exactly once, and — during live play —
// marks the question answered and schedules the return to home.
func (c *Controller) applyScoreDelta(ctx context.Context, points int, liveAnswer bool) []Outbound {
	if points <= 0 {
		return nil
	}
	c.score += points
	c.user.Score = c.score
	if liveAnswer && c.round != nil {
		c.answered[c.round.Question().ID] = true
	}

	var frames []Outbound
	if err := c.svc.SetScore(ctx, c.user.ID, c.score); err != nil {
		// Store unavailable: patch the local leaderboard directly and
		// surface a one-shot alert. No retry; the next authoritative
		// snapshot wins either way.
		c.log.Warn().Err(err).Msg("score write failed")
		c.patchLocalLeaderboard()
		frames = append(frames, Outbound{Type: "leaderboard", Payload: c.leaderboard}, errorFrame(err.Error()))
	}

	if liveAnswer && c.view == ViewLive {
		c.homePending = true
	}
	return frames
}

func (c *Controller) patchLocalLeaderboard() {
	for i := range c.leaderboard.Entries {
		if c.leaderboard.Entries[i].UserID == c.user.ID {
			c.leaderboard.Entries[i].Score = c.score
			return
		}
	}
	c.leaderboard.Entries = append(c.leaderboard.Entries, domain.LeaderboardEntry{
		UserID:   c.user.ID,
		Name:     c.user.Name,
		AvatarID: c.user.AvatarID,
		Score:    c.score,
	})
}
