package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"ark-trip-service/internal/domain"
)

// StateStore persists the authoritative record set (users, singletons,
// messages, trip code). The in-process hub remains the fan-out path; the
// store is what survives restarts. Writes are fire-and-forget from the
// caller's point of view: a failed write is surfaced once and never retried.
type StateStore interface {
	SaveUser(ctx context.Context, u domain.User) error
	LoadUsers(ctx context.Context) ([]domain.User, error)
	DeleteUsers(ctx context.Context) error
	SaveQuestion(ctx context.Context, q *domain.ActiveQuestion) error
	LoadQuestion(ctx context.Context) (*domain.ActiveQuestion, error)
	SaveCommand(ctx context.Context, cmd *domain.AdminCommand) error
	LoadCommand(ctx context.Context) (*domain.AdminCommand, error)
	AppendMessage(ctx context.Context, m domain.AdminMessage) error
	LoadMessages(ctx context.Context) ([]domain.AdminMessage, error)
	DeleteMessages(ctx context.Context) error
	SaveTripCode(ctx context.Context, code string) error
	LoadTripCode(ctx context.Context) (string, error)
}

// QuestionBank stores the admin-authored question list.
type QuestionBank interface {
	List(ctx context.Context) ([]domain.Question, error)
	Get(ctx context.Context, id string) (domain.Question, error)
	Save(ctx context.Context, q domain.Question) (domain.Question, error)
	Delete(ctx context.Context, id string) error
}

// JoinRequest carries one signup attempt.
type JoinRequest struct {
	Name     string
	Phone    string
	AvatarID int
	Code     string
}

// TripService contains the shared-state use cases: signup, score and spin
// writes, messaging, and the host-only broadcast operations.
type TripService struct {
	state     *TripState
	store     StateStore
	bank      QuestionBank
	clock     clockwork.Clock
	adminCode string
	log       zerolog.Logger
}

func NewTripService(state *TripState, store StateStore, bank QuestionBank, clock clockwork.Clock, adminCode string, log zerolog.Logger) *TripService {
	return &TripService{
		state:     state,
		store:     store,
		bank:      bank,
		clock:     clock,
		adminCode: adminCode,
		log:       log,
	}
}

// Restore loads persisted records into the hub. Called once at startup,
// before any subscriber attaches.
func (s *TripService) Restore(ctx context.Context) error {
	users, err := s.store.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		s.state.SetUser(u)
	}
	if code, err := s.store.LoadTripCode(ctx); err == nil && code != "" {
		s.state.SetTripCode(code)
	}
	if q, err := s.store.LoadQuestion(ctx); err == nil && q != nil {
		s.state.SetQuestion(q)
	}
	if cmd, err := s.store.LoadCommand(ctx); err == nil && cmd != nil {
		s.state.SetCommand(cmd)
	}
	msgs, err := s.store.LoadMessages(ctx)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	for _, m := range msgs {
		s.state.AppendMessage(m)
	}
	return nil
}

// Join validates the trip code (case-insensitively; the admin code bypasses
// it) and registers a fresh participant record. The store write is
// best-effort: a participant still joins the live session when persistence is
// down, matching the offline behavior of the original client.
func (s *TripService) Join(ctx context.Context, req JoinRequest) (domain.User, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	isAdmin := strings.EqualFold(code, s.adminCode)
	if !isAdmin && !strings.EqualFold(code, s.state.TripCode()) {
		return domain.User{}, domain.ErrTripCodeMismatch
	}

	name := strings.TrimSpace(req.Name)
	if isAdmin && name == "" {
		name = "القائد"
	}
	if len([]rune(name)) < 3 {
		return domain.User{}, domain.ErrNameTooShort
	}

	prefix := "user-"
	if isAdmin {
		prefix = "admin-"
	}
	u := domain.User{
		ID:       prefix + uuid.NewString(),
		Name:     name,
		Phone:    req.Phone,
		AvatarID: req.AvatarID,
		Score:    0,
		IsAdmin:  isAdmin,
		TripCode: code,
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		s.log.Warn().Err(err).Str("user", u.ID).Msg("join: store write failed")
	}
	s.state.SetUser(u)
	return u, nil
}

// Subscribe returns the typed event stream for one client. The caller must
// invoke cancel to detach; detaching does not abort in-flight writes.
func (s *TripService) Subscribe(_ context.Context) (<-chan Event, func()) {
	return s.state.Subscribe()
}

// SetScore writes a participant's new score total. Exactly one store write
// happens per call; on failure the hub is left untouched so the caller can
// fall back to patching its local snapshot.
func (s *TripService) SetScore(ctx context.Context, userID string, total int) error {
	u, ok := s.state.UserByID(userID)
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Score = total
	if err := s.store.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("save score: %w", err)
	}
	s.state.SetUser(u)
	return nil
}

// StampSpin records the wall-clock time of a reward-wheel spin, opening the
// cooldown window.
func (s *TripService) StampSpin(ctx context.Context, userID string, at int64) error {
	u, ok := s.state.UserByID(userID)
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastSpinTime = at
	if err := s.store.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("stamp spin: %w", err)
	}
	s.state.SetUser(u)
	return nil
}

// AppendMessage adds one participant-to-host message to the append-only log.
func (s *TripService) AppendMessage(ctx context.Context, senderID, senderName, text string) (domain.AdminMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.AdminMessage{}, domain.ErrEmptyMessage
	}
	m := domain.AdminMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
		Timestamp:  s.clock.Now().UnixMilli(),
	}
	if err := s.store.AppendMessage(ctx, m); err != nil {
		return domain.AdminMessage{}, fmt.Errorf("append message: %w", err)
	}
	s.state.AppendMessage(m)
	return m, nil
}

// TriggerQuestion broadcasts a bank question as the active-question
// singleton, stamped with a fresh triggeredAt so clients reset their timers
// even when the same id is re-sent.
func (s *TripService) TriggerQuestion(ctx context.Context, questionID string) (domain.ActiveQuestion, error) {
	q, err := s.bank.Get(ctx, questionID)
	if err != nil {
		return domain.ActiveQuestion{}, err
	}
	aq := domain.ActiveQuestion{Question: q, TriggeredAt: s.clock.Now().UnixMilli()}
	if err := s.store.SaveQuestion(ctx, &aq); err != nil {
		return domain.ActiveQuestion{}, fmt.Errorf("save active question: %w", err)
	}
	s.state.SetQuestion(&aq)
	s.log.Info().Str("question", q.ID).Msg("question triggered")
	return aq, nil
}

// ClearQuestion ends the live round for everyone.
func (s *TripService) ClearQuestion(ctx context.Context) error {
	if err := s.store.SaveQuestion(ctx, nil); err != nil {
		return fmt.Errorf("clear active question: %w", err)
	}
	s.state.SetQuestion(nil)
	return nil
}

// SendCommand broadcasts a host alert as the active-command singleton.
func (s *TripService) SendCommand(ctx context.Context, text string) (domain.AdminCommand, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.AdminCommand{}, domain.ErrEmptyMessage
	}
	cmd := domain.AdminCommand{
		Text:      text,
		Timestamp: s.clock.Now().UnixMilli(),
		Kind:      domain.CommandAlert,
	}
	if err := s.store.SaveCommand(ctx, &cmd); err != nil {
		return domain.AdminCommand{}, fmt.Errorf("save command: %w", err)
	}
	s.state.SetCommand(&cmd)
	return cmd, nil
}

func (s *TripService) ClearCommand(ctx context.Context) error {
	if err := s.store.SaveCommand(ctx, nil); err != nil {
		return fmt.Errorf("clear command: %w", err)
	}
	s.state.SetCommand(nil)
	return nil
}

// SetTripCode replaces the shared access code. Codes are uppercased and must
// be at least four characters.
func (s *TripService) SetTripCode(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < 4 {
		return domain.ErrTripCodeTooShort
	}
	if err := s.store.SaveTripCode(ctx, code); err != nil {
		return fmt.Errorf("save trip code: %w", err)
	}
	s.state.SetTripCode(code)
	return nil
}

// ClearMessages wipes the participant message log.
func (s *TripService) ClearMessages(ctx context.Context) error {
	if err := s.store.DeleteMessages(ctx); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	s.state.ClearMessages()
	return nil
}

// ResetLeaderboard deletes every participant and clears both singletons for a
// fresh round of the event. Messages are kept.
func (s *TripService) ResetLeaderboard(ctx context.Context) error {
	if err := s.store.DeleteUsers(ctx); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	if err := s.store.SaveQuestion(ctx, nil); err != nil {
		return fmt.Errorf("clear active question: %w", err)
	}
	if err := s.store.SaveCommand(ctx, nil); err != nil {
		return fmt.Errorf("clear command: %w", err)
	}
	s.state.ClearUsers()
	s.state.SetQuestion(nil)
	s.state.SetCommand(nil)
	s.log.Info().Msg("leaderboard reset")
	return nil
}

// Users returns the current participant snapshot (host console).
func (s *TripService) Users() []domain.User { return s.state.Users() }

// Messages returns the message log, newest first (host console).
func (s *TripService) Messages() []domain.AdminMessage { return s.state.Messages() }

// TripCode returns the current shared access code.
func (s *TripService) TripCode() string { return s.state.TripCode() }

// Bank exposes the question bank for the host REST surface.
func (s *TripService) Bank() QuestionBank { return s.bank }
