package service

import (
	"context"
	"errors"

	facilityerrors "courtside/internal/facilities/errors"
	reporterrors "courtside/internal/reports/errors"
	"courtside/internal/reports/repository"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
)

type FacilityDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Facility, error)
}

type ReportService interface {
	Create(ctx context.Context, report *model.Report, principal model.Principal) error
	GetByID(ctx context.Context, id string, principal model.Principal) (*model.Report, error)
	List(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Report, int64, error)
	UpdateStatus(ctx context.Context, id, status string, principal model.Principal) (*model.Report, error)
	Assign(ctx context.Context, id, staffID string, principal model.Principal) (*model.Report, error)
}

type reportService struct {
	repo       repository.ReportRepository
	facilities FacilityDirectory
	cfg        *config.Config
}

func NewReportService(repo repository.ReportRepository, facilities FacilityDirectory, cfg *config.Config) ReportService {
	return &reportService{
		repo:       repo,
		facilities: facilities,
		cfg:        cfg,
	}
}

// Create files a maintenance report. Any authenticated principal may file
// one; the facility must exist and the report opens against its staff.
func (s *reportService) Create(ctx context.Context, report *model.Report, principal model.Principal) error {
	report.Description = sanitizer.NormalizeDescription(report.Description)
	if report.Description == "" {
		return apperrors.Validation("Report description is required", nil)
	}

	facility, err := s.lookupFacility(ctx, report.FacilityID)
	if err != nil {
		return err
	}

	report.FacilityName = facility.Name
	report.FacilityStaff = facility.StaffID
	report.ReporterID = principal.UID
	report.Status = model.ReportOpen
	report.AssignedTo = ""

	if err := s.repo.Create(ctx, report); err != nil {
		s.cfg.Log.Error("Failed to create report", "facility_id", report.FacilityID, "error", err)
		return apperrors.Internal("Failed to create report", err)
	}

	s.cfg.Log.Info("Report created", "id", report.ID, "facility_id", report.FacilityID, "reporter", principal.UID)
	return nil
}

func (s *reportService) GetByID(ctx context.Context, id string, principal model.Principal) (*model.Report, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(report, principal) {
		return nil, apperrors.Forbidden("You may not view this report")
	}
	return report, nil
}

// List scopes results by role: residents see only their own reports, staff
// see reports against their facilities, admins see everything.
func (s *reportService) List(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Report, int64, error) {
	filter := bson.M{}
	switch {
	case principal.IsAdmin():
		// no filter
	case principal.IsStaff():
		filter["facility_staff"] = principal.UID
	default:
		filter["reporter_id"] = principal.UID
	}

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to count reports", "error", err)
		return nil, 0, apperrors.Internal("Failed to count reports", err)
	}

	reports, err := s.repo.Find(ctx, filter, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list reports", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve reports", err)
	}

	return reports, count, nil
}

// UpdateStatus moves a report between statuses. No ordering is enforced;
// open may go straight to closed.
func (s *reportService) UpdateStatus(ctx context.Context, id, status string, principal model.Principal) (*model.Report, error) {
	if !model.IsReportStatus(status) {
		return nil, apperrors.Validation("Invalid report status", map[string]any{
			"status":  status,
			"allowed": []string{model.ReportOpen, model.ReportInProgress, model.ReportClosed},
		})
	}

	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(report.FacilityStaff) {
		return nil, apperrors.Forbidden("Only the facility's staff or an admin may change report status")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, reporterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Report", id)
		}
		s.cfg.Log.Error("Failed to update report status", "id", id, "status", status, "error", err)
		return nil, apperrors.Internal("Failed to update report status", err)
	}

	s.cfg.Log.Info("Report status updated", "id", id, "status", status, "by", principal.UID)
	return updated, nil
}

// Assign hands a report to a staff member and marks it in progress.
func (s *reportService) Assign(ctx context.Context, id, staffID string, principal model.Principal) (*model.Report, error) {
	if staffID == "" {
		return nil, apperrors.InvalidInput("Assignee staff ID cannot be empty")
	}

	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(report.FacilityStaff) {
		return nil, apperrors.Forbidden("Only the facility's staff or an admin may assign reports")
	}

	updated, err := s.repo.Assign(ctx, id, staffID)
	if err != nil {
		if errors.Is(err, reporterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Report", id)
		}
		s.cfg.Log.Error("Failed to assign report", "id", id, "staff_id", staffID, "error", err)
		return nil, apperrors.Internal("Failed to assign report", err)
	}

	s.cfg.Log.Info("Report assigned", "id", id, "staff_id", staffID, "by", principal.UID)
	return updated, nil
}

// --- Helpers ---

func (s *reportService) canView(report *model.Report, principal model.Principal) bool {
	if report.ReporterID == principal.UID {
		return true
	}
	return principal.CanManage(report.FacilityStaff)
}

func (s *reportService) load(ctx context.Context, id string) (*model.Report, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Report ID cannot be empty")
	}

	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reporterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Report", id)
		}
		if errors.Is(err, reporterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid report ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve report", err)
	}
	return report, nil
}

func (s *reportService) lookupFacility(ctx context.Context, id string) (*model.Facility, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Facility ID cannot be empty")
	}

	facility, err := s.facilities.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		if errors.Is(err, facilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Facility", id)
		}
		if errors.Is(err, facilityerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid facility ID format")
		}
		return nil, apperrors.Internal("Failed to look up facility", err)
	}
	return facility, nil
}
