package app

import "ark-trip-service/internal/domain"

// EventType names the shared paths fanned out to clients.
type EventType string

const (
	EventUsers    EventType = "users"
	EventQuestion EventType = "activeQuestion"
	EventCommand  EventType = "activeCommand"
	EventMessages EventType = "messages"
	EventTripCode EventType = "tripCode"
)

// Event carries a whole-value snapshot for one path; deltas are never sent.
// Consumers must treat each event as a full replacement for that path and
// tolerate events for different paths arriving in any interleaving.
type Event struct {
	Type     EventType
	Users    []domain.User          // EventUsers
	Question *domain.ActiveQuestion // EventQuestion; nil means cleared
	Command  *domain.AdminCommand   // EventCommand; nil means cleared
	Messages []domain.AdminMessage  // EventMessages, newest first
	TripCode string                 // EventTripCode
}
