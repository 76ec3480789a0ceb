package memory

import (
	"context"
	"sort"
	"sync"

	"ark-trip-service/internal/domain"
)

// StateStore is the in-memory app.StateStore used when Redis is not
// configured. Nothing survives a restart.
type StateStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	question *domain.ActiveQuestion
	command  *domain.AdminCommand
	messages []domain.AdminMessage
	tripCode string
}

func NewStateStore() *StateStore {
	return &StateStore{users: make(map[string]domain.User)}
}

func (s *StateStore) SaveUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *StateStore) LoadUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *StateStore) DeleteUsers(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]domain.User)
	return nil
}

func (s *StateStore) SaveQuestion(_ context.Context, q *domain.ActiveQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.question = q
	return nil
}

func (s *StateStore) LoadQuestion(_ context.Context) (*domain.ActiveQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.question, nil
}

func (s *StateStore) SaveCommand(_ context.Context, cmd *domain.AdminCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.command = cmd
	return nil
}

func (s *StateStore) LoadCommand(_ context.Context) (*domain.AdminCommand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.command, nil
}

func (s *StateStore) AppendMessage(_ context.Context, m domain.AdminMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return nil
}

func (s *StateStore) LoadMessages(_ context.Context) ([]domain.AdminMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]domain.AdminMessage, len(s.messages))
	copy(msgs, s.messages)
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Timestamp > msgs[j].Timestamp })
	return msgs, nil
}

func (s *StateStore) DeleteMessages(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	return nil
}

func (s *StateStore) SaveTripCode(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tripCode = code
	return nil
}

func (s *StateStore) LoadTripCode(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tripCode, nil
}
