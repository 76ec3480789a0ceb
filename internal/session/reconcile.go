package session

import (
	"sort"

	"ark-trip-service/internal/domain"
)

// ReconcileUsers makes the remote users snapshot authoritative: malformed
// records are dropped, the leaderboard is replaced wholesale, and when the
// signed-in participant appears with a different score the remote score and
// lastSpinTime overwrite the local ones. The returned bool reports whether
// the local user changed.
func ReconcileUsers(self domain.User, snapshot []domain.User, now int64) (domain.Leaderboard, domain.User, bool) {
	entries := make([]domain.LeaderboardEntry, 0, len(snapshot))
	next := self
	changed := false
	for _, u := range snapshot {
		if !u.Valid() {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:   u.ID,
			Name:     u.Name,
			AvatarID: u.AvatarID,
			Score:    u.Score,
		})
		if u.ID == self.ID && u.Score != self.Score {
			next.Score = u.Score
			next.LastSpinTime = u.LastSpinTime
			changed = true
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	return domain.Leaderboard{Entries: entries, UpdatedAt: now}, next, changed
}

// TriggerMarker remembers the last seen (id, triggeredAt) pair of the
// active-question singleton so re-deliveries of the same snapshot never
// re-fire alerts, while a re-send of the same id with a fresh triggeredAt
// does.
type TriggerMarker struct {
	id          string
	triggeredAt int64
}

// Observe records a snapshot and reports whether it is a new trigger.
// A nil snapshot clears the marker.
func (m *TriggerMarker) Observe(q *domain.ActiveQuestion) bool {
	if q == nil {
		m.id = ""
		m.triggeredAt = 0
		return false
	}
	if q.ID == m.id && q.TriggeredAt == m.triggeredAt {
		return false
	}
	m.id = q.ID
	m.triggeredAt = q.TriggeredAt
	return true
}

// CommandMarker is the symmetric rule for the active-command singleton,
// keyed on timestamp only.
type CommandMarker struct {
	timestamp int64
}

func (m *CommandMarker) Observe(cmd *domain.AdminCommand) bool {
	if cmd == nil {
		m.timestamp = 0
		return false
	}
	if cmd.Timestamp == m.timestamp {
		return false
	}
	m.timestamp = cmd.Timestamp
	return true
}
