package model

import (
	"time"
)

// Maintenance report statuses. Transitions are not ordered; staff may move a
// report between any of these directly.
const (
	ReportOpen       = "open"
	ReportInProgress = "in progress"
	ReportClosed     = "closed"
)

type Report struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FacilityID    string    `json:"facilityId" bson:"facility_id" validate:"required,mongodb"`
	FacilityName  string    `json:"facilityName" bson:"facility_name" validate:"required,min=2,max=100"`
	Description   string    `json:"description" bson:"description" validate:"required,min=5,max=2000"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=open 'in progress' closed"`
	ReporterID    string    `json:"reporterId" bson:"reporter_id" validate:"required"`
	FacilityStaff string    `json:"facilityStaff" bson:"facility_staff" validate:"omitempty"`
	AssignedTo    string    `json:"assignedTo,omitempty" bson:"assigned_to,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at" validate:"omitempty"`
}

func IsReportStatus(status string) bool {
	switch status {
	case ReportOpen, ReportInProgress, ReportClosed:
		return true
	}
	return false
}
