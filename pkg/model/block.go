package model

import (
	"time"
)

// Block excludes one recurring slot on one specific date, e.g. for
// maintenance. Uniqueness of (facility, slot, date) is enforced by a unique
// index, so a concurrent duplicate insert fails at the store.
type Block struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	FacilityID   string    `json:"facilityId" bson:"facility_id" validate:"required,mongodb"`
	FacilityName string    `json:"facilityName" bson:"facility_name" validate:"required,min=2,max=100"`
	Day          string    `json:"day,omitempty" bson:"day,omitempty"`
	Slot         string    `json:"slot" bson:"slot" validate:"required,slot_range"`
	Date         string    `json:"date" bson:"date" validate:"required,booking_date"`
	CreatedBy    string    `json:"createdBy" bson:"created_by" validate:"omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at" validate:"omitempty"`
}
