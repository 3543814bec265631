package model

import (
	"time"
)

// Notification is one queued fan-out record for a resident. Writing these is
// best-effort and never part of the transaction that created the event.
type Notification struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string    `json:"userId" bson:"user_id"`
	EventID   string    `json:"eventId" bson:"event_id"`
	Message   string    `json:"message" bson:"message"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
