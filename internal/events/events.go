// Package events manages club events and member registrations.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is a scheduled club activity members can register for.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date"`
	Venue       string    `json:"venue"`
	Capacity    int       `json:"capacity"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Registration links a member to an event. One registration per member
// per event.
type Registration struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"event_id"`
	UserID       uuid.UUID `json:"user_id"`
	RegisteredAt time.Time `json:"registered_at"`
}
