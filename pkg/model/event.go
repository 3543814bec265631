package model

import (
	"time"
)

// Event is an admin-scheduled calendar entry against a facility. Start and
// end are absolute instants, not weekday-recurring ranges.
type Event struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FacilityID   string    `json:"facilityId" bson:"facility_id" validate:"required,mongodb"`
	FacilityName string    `json:"facilityName" bson:"facility_name" validate:"required,min=2,max=100"`
	Name         string    `json:"eventName" bson:"name" validate:"required,min=2,max=150"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	StartTime    time.Time `json:"startTime" bson:"start_time" validate:"required"`
	EndTime      time.Time `json:"endTime" bson:"end_time" validate:"required,gtfield=StartTime"`
	PosterURL    string    `json:"posterImage,omitempty" bson:"poster_url,omitempty" validate:"omitempty,url"`
	CreatedBy    string    `json:"createdBy" bson:"created_by" validate:"omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at" validate:"omitempty"`
}
