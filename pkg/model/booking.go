package model

import (
	"strings"
	"time"
)

// Booking statuses. A booking starts pending; staff later approve or reject.
// Rejected is terminal.
const (
	BookingPending  = "pending"
	BookingApproved = "approved"
	BookingRejected = "rejected"
)

// DateLayout is the calendar-date form used at the boundary ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

type Booking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FacilityID    string    `json:"facilityId" bson:"facility_id" validate:"required,mongodb"`
	FacilityName  string    `json:"facilityName" bson:"facility_name" validate:"required,min=2,max=100"`
	UserID        string    `json:"userId" bson:"user_id" validate:"required"`
	UserEmail     string    `json:"userEmail" bson:"user_email" validate:"omitempty,email"`
	Date          string    `json:"selectedDate" bson:"date" validate:"required,booking_date"`
	Slot          string    `json:"slot" bson:"slot" validate:"required,slot_range"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=pending approved rejected"`
	FacilityStaff string    `json:"facilityStaff" bson:"facility_staff" validate:"omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at" validate:"omitempty"`
}

// SplitSlot breaks a "HH:MM - HH:MM" slot string into its start and end.
// ok is false when the string is not in that shape.
func SplitSlot(slot string) (start, end string, ok bool) {
	parts := strings.Split(slot, " - ")
	if len(parts) != 2 {
		return "", "", false
	}
	start = strings.TrimSpace(parts[0])
	end = strings.TrimSpace(parts[1])
	if start == "" || end == "" {
		return "", "", false
	}
	return start, end, true
}

// FormatSlot renders a start/end pair in the boundary slot form.
func FormatSlot(start, end string) string {
	return start + " - " + end
}
