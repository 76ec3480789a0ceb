package app

import (
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"

	"ark-trip-service/internal/domain"
)

// TripState is the in-process authoritative copy of the shared record set and
// the fan-out hub. Singleton paths (active question, active command, trip
// code) follow last-writer-wins: a setter replaces the previous value and
// subscribers observe whichever write landed last.
type TripState struct {
	mu          sync.RWMutex
	clock       clockwork.Clock
	users       map[string]domain.User
	question    *domain.ActiveQuestion
	command     *domain.AdminCommand
	messages    []domain.AdminMessage
	tripCode    string
	subscribers map[chan Event]struct{}
}

func NewTripState(tripCode string, clock clockwork.Clock) *TripState {
	return &TripState{
		clock:       clock,
		users:       make(map[string]domain.User),
		tripCode:    tripCode,
		subscribers: make(map[chan Event]struct{}),
	}
}

// SetUser stores or replaces one participant record and broadcasts the users path.
func (s *TripState) SetUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	s.broadcastLocked(s.usersEventLocked())
}

func (s *TripState) UserByID(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *TripState) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersLocked()
}

// ClearUsers wipes every participant record (new round of the event).
func (s *TripState) ClearUsers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]domain.User)
	s.broadcastLocked(s.usersEventLocked())
}

// SetQuestion replaces the active-question singleton; nil clears it.
func (s *TripState) SetQuestion(q *domain.ActiveQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.question = q
	s.broadcastLocked(Event{Type: EventQuestion, Question: q})
}

func (s *TripState) Question() *domain.ActiveQuestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.question
}

// SetCommand replaces the active-command singleton; nil clears it.
func (s *TripState) SetCommand(cmd *domain.AdminCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.command = cmd
	s.broadcastLocked(Event{Type: EventCommand, Command: cmd})
}

func (s *TripState) Command() *domain.AdminCommand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.command
}

func (s *TripState) AppendMessage(m domain.AdminMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	s.broadcastLocked(Event{Type: EventMessages, Messages: s.messagesLocked()})
}

func (s *TripState) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.broadcastLocked(Event{Type: EventMessages, Messages: nil})
}

func (s *TripState) Messages() []domain.AdminMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.messagesLocked()
}

func (s *TripState) SetTripCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tripCode = code
	s.broadcastLocked(Event{Type: EventTripCode, TripCode: code})
}

func (s *TripState) TripCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tripCode
}

// Subscribe registers a new event channel primed with a full snapshot of
// every path. The caller must invoke the returned cancel function to avoid
// leaks.
func (s *TripState) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := []Event{
		{Type: EventTripCode, TripCode: s.tripCode},
		s.usersEventLocked(),
		{Type: EventQuestion, Question: s.question},
		{Type: EventCommand, Command: s.command},
		{Type: EventMessages, Messages: s.messagesLocked()},
	}
	s.mu.Unlock()

	for _, ev := range initial {
		ch <- ev
	}

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// broadcastLocked fans an event out without letting a slow consumer block the
// hub: when a channel is full the oldest pending event is dropped in favor of
// the fresh snapshot.
func (s *TripState) broadcastLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *TripState) usersEventLocked() Event {
	return Event{Type: EventUsers, Users: s.usersLocked()}
}

func (s *TripState) usersLocked() []domain.User {
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *TripState) messagesLocked() []domain.AdminMessage {
	msgs := make([]domain.AdminMessage, len(s.messages))
	copy(msgs, s.messages)
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Timestamp > msgs[j].Timestamp })
	return msgs
}
