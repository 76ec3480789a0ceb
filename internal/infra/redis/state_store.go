package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"ark-trip-service/internal/domain"
)

const (
	usersKey    = "trip:users"
	messagesKey = "trip:messages"
	questionKey = "trip:activeQuestion"
	commandKey  = "trip:activeCommand"
	tripCodeKey = "trip:config:tripCode"
)

// StateStore persists the shared trip state in Redis so it survives
// restarts and can be shared between instances. Users and messages live in
// hashes keyed by id; the two singletons are plain JSON values where DEL
// means "cleared".
type StateStore struct {
	client *redis.Client
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) SaveUser(ctx context.Context, u domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.client.HSet(ctx, usersKey, u.ID, data).Err(); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *StateStore) LoadUsers(ctx context.Context) ([]domain.User, error) {
	raw, err := s.client.HGetAll(ctx, usersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	users := make([]domain.User, 0, len(raw))
	for _, data := range raw {
		var u domain.User
		if err := json.Unmarshal([]byte(data), &u); err != nil {
			// skip malformed records rather than failing the whole load
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *StateStore) DeleteUsers(ctx context.Context) error {
	if err := s.client.Del(ctx, usersKey).Err(); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}

func (s *StateStore) SaveQuestion(ctx context.Context, q *domain.ActiveQuestion) error {
	if q == nil {
		if err := s.client.Del(ctx, questionKey).Err(); err != nil {
			return fmt.Errorf("clear question: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	if err := s.client.Set(ctx, questionKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

func (s *StateStore) LoadQuestion(ctx context.Context) (*domain.ActiveQuestion, error) {
	data, err := s.client.Get(ctx, questionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	var q domain.ActiveQuestion
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("unmarshal question: %w", err)
	}
	return &q, nil
}

func (s *StateStore) SaveCommand(ctx context.Context, cmd *domain.AdminCommand) error {
	if cmd == nil {
		if err := s.client.Del(ctx, commandKey).Err(); err != nil {
			return fmt.Errorf("clear command: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	if err := s.client.Set(ctx, commandKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save command: %w", err)
	}
	return nil
}

func (s *StateStore) LoadCommand(ctx context.Context) (*domain.AdminCommand, error) {
	data, err := s.client.Get(ctx, commandKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load command: %w", err)
	}
	var cmd domain.AdminCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("unmarshal command: %w", err)
	}
	return &cmd, nil
}

func (s *StateStore) AppendMessage(ctx context.Context, m domain.AdminMessage) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := s.client.HSet(ctx, messagesKey, m.ID, data).Err(); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *StateStore) LoadMessages(ctx context.Context) ([]domain.AdminMessage, error) {
	raw, err := s.client.HGetAll(ctx, messagesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	msgs := make([]domain.AdminMessage, 0, len(raw))
	for _, data := range raw {
		var m domain.AdminMessage
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Timestamp > msgs[j].Timestamp })
	return msgs, nil
}

func (s *StateStore) DeleteMessages(ctx context.Context) error {
	if err := s.client.Del(ctx, messagesKey).Err(); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

func (s *StateStore) SaveTripCode(ctx context.Context, code string) error {
	if err := s.client.Set(ctx, tripCodeKey, code, 0).Err(); err != nil {
		return fmt.Errorf("save trip code: %w", err)
	}
	return nil
}

func (s *StateStore) LoadTripCode(ctx context.Context) (string, error) {
	code, err := s.client.Get(ctx, tripCodeKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load trip code: %w", err)
	}
	return code, nil
}
