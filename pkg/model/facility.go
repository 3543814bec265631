package model

import (
	"time"
)

// Facility availability statuses.
const (
	FacilityAvailable        = "Available"
	FacilityClosed           = "Closed"
	FacilityUnderMaintenance = "Under Maintenance"
)

// Weekday names as stored in timeslot templates.
var Weekdays = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// WeekdayOf returns the template weekday name for a calendar date.
func WeekdayOf(date time.Time) string {
	return date.Weekday().String()
}

// TimeSlot is one recurring range in a facility's weekly template. Times are
// wall-clock "HH:MM" strings; lexicographic order equals temporal order
// because all compared slots share a weekday.
type TimeSlot struct {
	Start    string `json:"start" bson:"start" validate:"required"`
	End      string `json:"end" bson:"end" validate:"required"`
	IsBooked bool   `json:"isBooked,omitempty" bson:"is_booked,omitempty"`
}

// Timeslots maps weekday name to that day's ordered slot ranges.
type Timeslots map[string][]TimeSlot

type Location struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

type Facility struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Type        string    `json:"type" bson:"type" validate:"required,min=2,max=50"`
	Outdoor     bool      `json:"outdoor" bson:"outdoor"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof='Available' 'Closed' 'Under Maintenance'"`
	StaffID     string    `json:"staffId" bson:"staff_id" validate:"required"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Features    []string  `json:"features,omitempty" bson:"features,omitempty" validate:"omitempty,dive,min=1,max=100"`
	Location    *Location `json:"location,omitempty" bson:"location,omitempty"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"omitempty,min=1,max=50"`
	Timeslots   Timeslots `json:"timeslots,omitempty" bson:"timeslots,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at" validate:"omitempty"`
}

// FacilityUpdate carries the mutable metadata fields. Template changes go
// through the dedicated timeslot operations instead.
type FacilityUpdate struct {
	Name        string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Type        string    `json:"type,omitempty" validate:"omitempty,min=2,max=50"`
	Outdoor     *bool     `json:"outdoor,omitempty"`
	Status      string    `json:"status,omitempty" validate:"omitempty,oneof='Available' 'Closed' 'Under Maintenance'"`
	Description string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	Features    *[]string `json:"features,omitempty" validate:"omitempty,dive,min=1,max=100"`
	Location    *Location `json:"location,omitempty"`
	Capacity    *int      `json:"capacity,omitempty" validate:"omitempty,min=1,max=50"`
}

// SlotCapacity is the number of concurrent non-rejected bookings a slot
// admits. Zero (unset) means the exclusive default of one.
func (f *Facility) SlotCapacity() int {
	if f.Capacity <= 0 {
		return 1
	}
	return f.Capacity
}
