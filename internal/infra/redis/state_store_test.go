package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"ark-trip-service/internal/domain"
)

func newTestStore(t *testing.T) *StateStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return NewStateStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestStateStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := domain.User{ID: "user-1", Name: "Sara", Score: 40, TripCode: "852456"}
	if err := store.SaveUser(ctx, u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	u.Score = 90
	if err := store.SaveUser(ctx, u); err != nil {
		t.Fatalf("overwrite user: %v", err)
	}

	users, err := store.LoadUsers(ctx)
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("users %d, want 1", len(users))
	}
	if users[0].Score != 90 {
		t.Fatalf("score %d, want the last write", users[0].Score)
	}

	if err := store.DeleteUsers(ctx); err != nil {
		t.Fatalf("delete users: %v", err)
	}
	users, err = store.LoadUsers(ctx)
	if err != nil {
		t.Fatalf("load after delete: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("users %d after wipe, want 0", len(users))
	}
}

func TestStateStoreQuestionSingleton(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if q, err := store.LoadQuestion(ctx); err != nil || q != nil {
		t.Fatalf("empty store: q=%v err=%v", q, err)
	}

	aq := &domain.ActiveQuestion{
		Question: domain.Question{
			ID:           "q1",
			Text:         "2 + 2 = ?",
			Options:      []string{"3", "4"},
			CorrectIndex: 1,
			Type:         domain.QuestionText,
		},
		TriggeredAt: 12345,
	}
	if err := store.SaveQuestion(ctx, aq); err != nil {
		t.Fatalf("save question: %v", err)
	}
	got, err := store.LoadQuestion(ctx)
	if err != nil {
		t.Fatalf("load question: %v", err)
	}
	if got == nil || got.ID != "q1" || got.TriggeredAt != 12345 {
		t.Fatalf("got %+v", got)
	}

	if err := store.SaveQuestion(ctx, nil); err != nil {
		t.Fatalf("clear question: %v", err)
	}
	if q, err := store.LoadQuestion(ctx); err != nil || q != nil {
		t.Fatalf("cleared store: q=%v err=%v", q, err)
	}
}

func TestStateStoreCommandSingleton(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cmd := &domain.AdminCommand{Text: "تجمع عند الباص", Timestamp: 777, Kind: domain.CommandAlert}
	if err := store.SaveCommand(ctx, cmd); err != nil {
		t.Fatalf("save command: %v", err)
	}
	got, err := store.LoadCommand(ctx)
	if err != nil {
		t.Fatalf("load command: %v", err)
	}
	if got == nil || got.Text != cmd.Text || got.Timestamp != 777 {
		t.Fatalf("got %+v", got)
	}

	if err := store.SaveCommand(ctx, nil); err != nil {
		t.Fatalf("clear command: %v", err)
	}
	if c, err := store.LoadCommand(ctx); err != nil || c != nil {
		t.Fatalf("cleared store: c=%v err=%v", c, err)
	}
}

func TestStateStoreMessagesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, ts := range []int64{100, 300, 200} {
		m := domain.AdminMessage{
			ID:         string(rune('a' + i)),
			SenderID:   "user-1",
			SenderName: "Sara",
			Text:       "hi",
			Timestamp:  ts,
		}
		if err := store.AppendMessage(ctx, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	msgs, err := store.LoadMessages(ctx)
	if err != nil {
		t.Fatalf("load messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("messages %d, want 3", len(msgs))
	}
	if msgs[0].Timestamp != 300 || msgs[2].Timestamp != 100 {
		t.Fatalf("not newest first: %+v", msgs)
	}

	if err := store.DeleteMessages(ctx); err != nil {
		t.Fatalf("delete messages: %v", err)
	}
	msgs, _ = store.LoadMessages(ctx)
	if len(msgs) != 0 {
		t.Fatalf("messages %d after wipe", len(msgs))
	}
}

func TestStateStoreTripCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	code, err := store.LoadTripCode(ctx)
	if err != nil || code != "" {
		t.Fatalf("empty store: code=%q err=%v", code, err)
	}
	if err := store.SaveTripCode(ctx, "WINTER25"); err != nil {
		t.Fatalf("save: %v", err)
	}
	code, err = store.LoadTripCode(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if code != "WINTER25" {
		t.Fatalf("code %q", code)
	}
}

func TestStateStoreSkipsMalformedRecords(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStateStore(client)
	ctx := context.Background()

	if err := store.SaveUser(ctx, domain.User{ID: "user-1", Name: "Sara"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.HSet(usersKey, "user-2", "{not json")

	users, err := store.LoadUsers(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(users) != 1 || users[0].ID != "user-1" {
		t.Fatalf("malformed record not skipped: %+v", users)
	}
}
