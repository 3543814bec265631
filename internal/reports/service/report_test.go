package service

import (
	"context"
	"io"
	"testing"

	"courtside/internal/reports/repository"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

const facilityID = "656f000000000000000000aa"

type fakeReportRepo struct {
	CreateFn       func(ctx context.Context, report *model.Report) error
	FindByIDFn     func(ctx context.Context, id string) (*model.Report, error)
	FindFn         func(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Report, error)
	CountFn        func(ctx context.Context, filter bson.M) (int64, error)
	UpdateStatusFn func(ctx context.Context, id, status string) (*model.Report, error)
	AssignFn       func(ctx context.Context, id, staffID string) (*model.Report, error)
}

func (f *fakeReportRepo) Create(ctx context.Context, report *model.Report) error {
	return f.CreateFn(ctx, report)
}

func (f *fakeReportRepo) FindByID(ctx context.Context, id string) (*model.Report, error) {
	return f.FindByIDFn(ctx, id)
}

func (f *fakeReportRepo) Find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Report, error) {
	return f.FindFn(ctx, filter, limit, offset)
}

func (f *fakeReportRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return f.CountFn(ctx, filter)
}

func (f *fakeReportRepo) UpdateStatus(ctx context.Context, id, status string) (*model.Report, error) {
	return f.UpdateStatusFn(ctx, id, status)
}

func (f *fakeReportRepo) Assign(ctx context.Context, id, staffID string) (*model.Report, error) {
	return f.AssignFn(ctx, id, staffID)
}

var _ repository.ReportRepository = (*fakeReportRepo)(nil)

type fakeDirectory struct {
	facility *model.Facility
	err      error
}

func (f *fakeDirectory) FindByID(_ context.Context, _ string) (*model.Facility, error) {
	return f.facility, f.err
}

func newReportService(repo *fakeReportRepo, directory *fakeDirectory) ReportService {
	cfg := &config.Config{
		Log: logger.New(logger.Options{Level: "error", Output: io.Discard}),
	}
	return NewReportService(repo, directory, cfg)
}

var (
	reporter = model.Principal{UID: "resident-1", Role: model.RoleResident}
	staff    = model.Principal{UID: "staff-1", Role: model.RoleStaff}
	admin    = model.Principal{UID: "admin-1", Role: model.RoleAdmin}
)

func storedReport(status string) *model.Report {
	return &model.Report{
		ID:            "656f000000000000000000dd",
		FacilityID:    facilityID,
		FacilityName:  "Tennis Court A",
		Description:   "Net is torn near the left post",
		Status:        status,
		ReporterID:    "resident-1",
		FacilityStaff: "staff-1",
	}
}

func TestCreateReport(t *testing.T) {
	t.Run("opens against the facility staff", func(t *testing.T) {
		var created *model.Report
		repo := &fakeReportRepo{
			CreateFn: func(_ context.Context, report *model.Report) error {
				created = report
				return nil
			},
		}
		directory := &fakeDirectory{facility: &model.Facility{ID: facilityID, Name: "Tennis Court A", StaffID: "staff-1"}}
		svc := newReportService(repo, directory)

		report := &model.Report{FacilityID: facilityID, Description: "Net is torn near the left post"}
		err := svc.Create(context.Background(), report, reporter)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, model.ReportOpen, created.Status)
		assert.Equal(t, "resident-1", created.ReporterID)
		assert.Equal(t, "staff-1", created.FacilityStaff)
	})

	t.Run("unknown facility is not found", func(t *testing.T) {
		directory := &fakeDirectory{err: apperrors.NotFoundWithID("Facility", facilityID)}
		svc := newReportService(&fakeReportRepo{}, directory)

		report := &model.Report{FacilityID: facilityID, Description: "Broken light"}
		err := svc.Create(context.Background(), report, reporter)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})
}

func TestListReports(t *testing.T) {
	captureFilter := func() (*bson.M, ReportService) {
		var got bson.M
		repo := &fakeReportRepo{
			CountFn: func(_ context.Context, filter bson.M) (int64, error) {
				got = filter
				return 0, nil
			},
			FindFn: func(_ context.Context, _ bson.M, _ int, _ int64) ([]*model.Report, error) {
				return nil, nil
			},
		}
		return &got, newReportService(repo, &fakeDirectory{})
	}

	t.Run("resident sees only own reports", func(t *testing.T) {
		got, svc := captureFilter()
		_, _, err := svc.List(context.Background(), reporter, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, bson.M{"reporter_id": "resident-1"}, *got)
	})

	t.Run("staff sees reports against owned facilities", func(t *testing.T) {
		got, svc := captureFilter()
		_, _, err := svc.List(context.Background(), staff, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, bson.M{"facility_staff": "staff-1"}, *got)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		got, svc := captureFilter()
		_, _, err := svc.List(context.Background(), admin, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, *got)
	})
}

func TestUpdateReportStatus(t *testing.T) {
	updateService := func(current string) ReportService {
		repo := &fakeReportRepo{
			FindByIDFn: func(_ context.Context, _ string) (*model.Report, error) {
				return storedReport(current), nil
			},
			UpdateStatusFn: func(_ context.Context, _, status string) (*model.Report, error) {
				return storedReport(status), nil
			},
		}
		return newReportService(repo, &fakeDirectory{})
	}

	t.Run("unknown status rejected", func(t *testing.T) {
		svc := updateService(model.ReportOpen)
		_, err := svc.UpdateStatus(context.Background(), "656f000000000000000000dd", "resolved", staff)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	})

	t.Run("reporter cannot change status", func(t *testing.T) {
		svc := updateService(model.ReportOpen)
		_, err := svc.UpdateStatus(context.Background(), "656f000000000000000000dd", model.ReportClosed, reporter)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	})

	t.Run("open may jump straight to closed", func(t *testing.T) {
		svc := updateService(model.ReportOpen)
		updated, err := svc.UpdateStatus(context.Background(), "656f000000000000000000dd", model.ReportClosed, staff)
		require.NoError(t, err)
		assert.Equal(t, model.ReportClosed, updated.Status)
	})

	t.Run("closed may reopen", func(t *testing.T) {
		svc := updateService(model.ReportClosed)
		updated, err := svc.UpdateStatus(context.Background(), "656f000000000000000000dd", model.ReportOpen, admin)
		require.NoError(t, err)
		assert.Equal(t, model.ReportOpen, updated.Status)
	})
}

func TestGetReportVisibility(t *testing.T) {
	svc := newReportService(&fakeReportRepo{
		FindByIDFn: func(_ context.Context, _ string) (*model.Report, error) {
			return storedReport(model.ReportOpen), nil
		},
	}, &fakeDirectory{})

	t.Run("reporter may view", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), "656f000000000000000000dd", reporter)
		assert.NoError(t, err)
	})

	t.Run("owning staff may view", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), "656f000000000000000000dd", staff)
		assert.NoError(t, err)
	})

	t.Run("other resident may not view", func(t *testing.T) {
		other := model.Principal{UID: "resident-2", Role: model.RoleResident}
		_, err := svc.GetByID(context.Background(), "656f000000000000000000dd", other)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	})
}
