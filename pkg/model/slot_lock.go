package model

import (
	"time"
)

// SlotLock is an advisory lock document. The deterministic _id makes a
// second concurrent insert for the same slot fail with a duplicate key
// error, which is the whole locking mechanism. ExpiresAt is TTL-indexed so
// a crashed holder cannot wedge the slot.
type SlotLock struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}
