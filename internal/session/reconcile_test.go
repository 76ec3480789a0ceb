package session

import (
	"testing"

	"ark-trip-service/internal/domain"
)

func TestReconcileUsersSortsAndFilters(t *testing.T) {
	self := domain.User{ID: "u1", Name: "Sara", Score: 30}
	snapshot := []domain.User{
		{ID: "u2", Name: "Omar", Score: 80},
		{ID: "", Name: "broken"},
		{ID: "u3", Name: ""},
		{ID: "u1", Name: "Sara", Score: 30},
		{ID: "u4", Name: "Ali", Score: 80},
	}

	lb, next, changed := ReconcileUsers(self, snapshot, 5000)
	if changed {
		t.Fatal("same score must not flag a change")
	}
	if next.Score != 30 {
		t.Fatalf("self score %d, want 30", next.Score)
	}
	if len(lb.Entries) != 3 {
		t.Fatalf("entries %d, want 3 (malformed dropped)", len(lb.Entries))
	}
	// ties broken by name
	if lb.Entries[0].UserID != "u4" || lb.Entries[1].UserID != "u2" || lb.Entries[2].UserID != "u1" {
		t.Fatalf("unexpected order: %+v", lb.Entries)
	}
	if lb.UpdatedAt != 5000 {
		t.Fatalf("updatedAt %d, want 5000", lb.UpdatedAt)
	}
}

func TestReconcileUsersAdoptsRemoteScore(t *testing.T) {
	self := domain.User{ID: "u1", Name: "Sara", Score: 30, LastSpinTime: 100}
	snapshot := []domain.User{{ID: "u1", Name: "Sara", Score: 75, LastSpinTime: 900}}

	_, next, changed := ReconcileUsers(self, snapshot, 0)
	if !changed {
		t.Fatal("score difference must flag a change")
	}
	if next.Score != 75 || next.LastSpinTime != 900 {
		t.Fatalf("remote record not adopted: %+v", next)
	}
}

func TestTriggerMarker(t *testing.T) {
	var m TriggerMarker
	q := &domain.ActiveQuestion{Question: domain.Question{ID: "q1"}, TriggeredAt: 1000}

	if !m.Observe(q) {
		t.Fatal("first delivery is a new trigger")
	}
	if m.Observe(q) {
		t.Fatal("re-delivery must not re-fire")
	}

	refired := &domain.ActiveQuestion{Question: domain.Question{ID: "q1"}, TriggeredAt: 2000}
	if !m.Observe(refired) {
		t.Fatal("same id with fresh triggeredAt is a new trigger")
	}

	if m.Observe(nil) {
		t.Fatal("clearing is not a trigger")
	}
	if !m.Observe(q) {
		t.Fatal("after a clear the original trigger fires again")
	}
}

func TestCommandMarker(t *testing.T) {
	var m CommandMarker
	cmd := &domain.AdminCommand{Text: "تجمع", Timestamp: 500}

	if !m.Observe(cmd) {
		t.Fatal("first delivery is new")
	}
	if m.Observe(cmd) {
		t.Fatal("same timestamp must not re-fire")
	}
	if !m.Observe(&domain.AdminCommand{Text: "تجمع", Timestamp: 600}) {
		t.Fatal("fresh timestamp is new")
	}
}
