package service

import (
	"context"
	"io"
	"testing"
	"time"

	"courtside/internal/bookings/repository"
	"courtside/internal/bookings/validator"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const facilityID = "656f000000000000000000aa"

type fakeBookingRepo struct {
	CreateFn               func(ctx context.Context, booking *model.Booking) error
	FindByIDFn             func(ctx context.Context, id string) (*model.Booking, error)
	CountActiveFn          func(ctx context.Context, facilityID, date, slot string) (int64, error)
	CountUserActiveFn      func(ctx context.Context, facilityID, date, slot, userID string) (int64, error)
	FindByUserFn           func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	CountByUserFn          func(ctx context.Context, userID string) (int64, error)
	FindUpcomingApprovedFn func(ctx context.Context, staffID, fromDate string, limit int, offset int64) ([]*model.Booking, error)
	UpdateStatusFn         func(ctx context.Context, id, status string) (*model.Booking, error)
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return f.CreateFn(ctx, booking)
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return f.FindByIDFn(ctx, id)
}

func (f *fakeBookingRepo) CountActive(ctx context.Context, facilityID, date, slot string) (int64, error) {
	return f.CountActiveFn(ctx, facilityID, date, slot)
}

func (f *fakeBookingRepo) CountUserActive(ctx context.Context, facilityID, date, slot, userID string) (int64, error) {
	return f.CountUserActiveFn(ctx, facilityID, date, slot, userID)
}

func (f *fakeBookingRepo) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	return f.FindByUserFn(ctx, userID, limit, offset)
}

func (f *fakeBookingRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	return f.CountByUserFn(ctx, userID)
}

func (f *fakeBookingRepo) FindUpcomingApproved(ctx context.Context, staffID, fromDate string, limit int, offset int64) ([]*model.Booking, error) {
	return f.FindUpcomingApprovedFn(ctx, staffID, fromDate, limit, offset)
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	return f.UpdateStatusFn(ctx, id, status)
}

func (f *fakeBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type fakeLockRepo struct {
	CreateErr error
	Deleted   []string
}

func (f *fakeLockRepo) Create(_ context.Context, _ *model.SlotLock) error {
	return f.CreateErr
}

func (f *fakeLockRepo) Delete(_ context.Context, lockID string) error {
	f.Deleted = append(f.Deleted, lockID)
	return nil
}

type fakeDirectory struct {
	facility *model.Facility
	err      error
}

func (f *fakeDirectory) FindByID(_ context.Context, _ string) (*model.Facility, error) {
	return f.facility, f.err
}

type fakeReconciler struct {
	calls []bool
	err   error
}

func (f *fakeReconciler) SetSlotBooked(_ context.Context, _, _, _ string, booked bool) error {
	f.calls = append(f.calls, booked)
	return f.err
}

type fixture struct {
	repo       *fakeBookingRepo
	locks      *fakeLockRepo
	directory  *fakeDirectory
	reconciler *fakeReconciler
	svc        BookingService
}

func newFixture(repo *fakeBookingRepo, locks *fakeLockRepo, directory *fakeDirectory, reconciler *fakeReconciler) *fixture {
	cfg := &config.Config{
		SlotLockTTL: 10 * time.Second,
		Log:         logger.New(logger.Options{Level: "error", Output: io.Discard}),
	}
	return &fixture{
		repo:       repo,
		locks:      locks,
		directory:  directory,
		reconciler: reconciler,
		svc:        NewBookingService(repo, locks, directory, reconciler, validator.NewBookingValidator(cfg.Log), cfg),
	}
}

var _ repository.BookingRepository = (*fakeBookingRepo)(nil)
var _ repository.SlotLockRepository = (*fakeLockRepo)(nil)

func courtFacility(capacity int) *model.Facility {
	return &model.Facility{
		ID:       facilityID,
		Name:     "Tennis Court A",
		StaffID:  "staff-1",
		Status:   model.FacilityAvailable,
		Capacity: capacity,
	}
}

func bookingRequest() *model.Booking {
	return &model.Booking{
		FacilityID:   facilityID,
		FacilityName: "Tennis Court A",
		Date:         "2026-09-07",
		Slot:         "09:00 - 10:00",
	}
}

var resident = model.Principal{UID: "resident-1", Email: "r1@example.com", Role: model.RoleResident}

func TestCreateBooking(t *testing.T) {
	t.Run("missing fields rejected before any lookup", func(t *testing.T) {
		f := newFixture(&fakeBookingRepo{}, &fakeLockRepo{}, &fakeDirectory{}, &fakeReconciler{})
		booking := bookingRequest()
		booking.Slot = ""

		err := f.svc.Create(context.Background(), booking, resident)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	})

	t.Run("successful admission commits pending", func(t *testing.T) {
		var created *model.Booking
		repo := &fakeBookingRepo{
			CountUserActiveFn: func(_ context.Context, _, _, _, _ string) (int64, error) { return 0, nil },
			CountActiveFn:     func(_ context.Context, _, _, _ string) (int64, error) { return 0, nil },
			CreateFn: func(_ context.Context, booking *model.Booking) error {
				created = booking
				return nil
			},
		}
		locks := &fakeLockRepo{}
		f := newFixture(repo, locks, &fakeDirectory{facility: courtFacility(1)}, &fakeReconciler{})

		err := f.svc.Create(context.Background(), bookingRequest(), resident)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, model.BookingPending, created.Status)
		assert.Equal(t, "resident-1", created.UserID)
		assert.Equal(t, "staff-1", created.FacilityStaff)
		assert.Len(t, locks.Deleted, 1, "advisory lock must be released")
	})

	t.Run("per-user duplicate conflicts before capacity", func(t *testing.T) {
		repo := &fakeBookingRepo{
			CountUserActiveFn: func(_ context.Context, _, _, _, _ string) (int64, error) { return 1, nil },
			CountActiveFn: func(_ context.Context, _, _, _ string) (int64, error) {
				t.Fatal("capacity must not be checked after a duplicate")
				return 0, nil
			},
		}
		f := newFixture(repo, &fakeLockRepo{}, &fakeDirectory{facility: courtFacility(5)}, &fakeReconciler{})

		err := f.svc.Create(context.Background(), bookingRequest(), resident)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeConflict, appErr.Code)
		assert.Contains(t, appErr.Message, "already have a booking")
	})

	t.Run("full slot conflicts", func(t *testing.T) {
		repo := &fakeBookingRepo{
			CountUserActiveFn: func(_ context.Context, _, _, _, _ string) (int64, error) { return 0, nil },
			CountActiveFn:     func(_ context.Context, _, _, _ string) (int64, error) { return 2, nil },
		}
		f := newFixture(repo, &fakeLockRepo{}, &fakeDirectory{facility: courtFacility(2)}, &fakeReconciler{})

		err := f.svc.Create(context.Background(), bookingRequest(), resident)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeConflict, appErr.Code)
		assert.Contains(t, appErr.Message, "fully booked")
	})

	t.Run("held slot lock conflicts without touching counts", func(t *testing.T) {
		repo := &fakeBookingRepo{
			CountUserActiveFn: func(_ context.Context, _, _, _, _ string) (int64, error) {
				t.Fatal("admission checks must wait for the lock")
				return 0, nil
			},
		}
		locks := &fakeLockRepo{
			CreateErr: mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}},
		}
		f := newFixture(repo, locks, &fakeDirectory{facility: courtFacility(1)}, &fakeReconciler{})

		err := f.svc.Create(context.Background(), bookingRequest(), resident)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	})

	t.Run("capacity below limit admits", func(t *testing.T) {
		repo := &fakeBookingRepo{
			CountUserActiveFn: func(_ context.Context, _, _, _, _ string) (int64, error) { return 0, nil },
			CountActiveFn:     func(_ context.Context, _, _, _ string) (int64, error) { return 1, nil },
			CreateFn:          func(_ context.Context, _ *model.Booking) error { return nil },
		}
		f := newFixture(repo, &fakeLockRepo{}, &fakeDirectory{facility: courtFacility(2)}, &fakeReconciler{})

		assert.NoError(t, f.svc.Create(context.Background(), bookingRequest(), resident))
	})
}

func TestUpdateBookingStatus(t *testing.T) {
	storedBooking := func(status string) *model.Booking {
		return &model.Booking{
			ID:            "656f000000000000000000bb",
			FacilityID:    facilityID,
			UserID:        "resident-1",
			Date:          "2026-09-07",
			Slot:          "09:00 - 10:00",
			Status:        status,
			FacilityStaff: "staff-1",
		}
	}

	staff := model.Principal{UID: "staff-1", Role: model.RoleStaff}

	updateFixture := func(current string) (*fixture, *fakeReconciler) {
		reconciler := &fakeReconciler{}
		repo := &fakeBookingRepo{
			FindByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
				return storedBooking(current), nil
			},
			UpdateStatusFn: func(_ context.Context, _, status string) (*model.Booking, error) {
				return storedBooking(status), nil
			},
		}
		return newFixture(repo, &fakeLockRepo{}, &fakeDirectory{}, reconciler), reconciler
	}

	t.Run("invalid target status rejected", func(t *testing.T) {
		f, _ := updateFixture(model.BookingPending)
		_, err := f.svc.UpdateStatus(context.Background(), "656f000000000000000000bb", "cancelled", staff)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	})

	t.Run("other staff is forbidden", func(t *testing.T) {
		f, _ := updateFixture(model.BookingPending)
		other := model.Principal{UID: "staff-2", Role: model.RoleStaff}
		_, err := f.svc.UpdateStatus(context.Background(), "656f000000000000000000bb", model.BookingApproved, other)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	})

	t.Run("approve sets the template flag", func(t *testing.T) {
		f, reconciler := updateFixture(model.BookingPending)
		updated, err := f.svc.UpdateStatus(context.Background(), "656f000000000000000000bb", model.BookingApproved, staff)
		require.NoError(t, err)
		assert.Equal(t, model.BookingApproved, updated.Status)
		assert.Equal(t, []bool{true}, reconciler.calls)
	})

	t.Run("reject from pending clears the template flag", func(t *testing.T) {
		f, reconciler := updateFixture(model.BookingPending)
		updated, err := f.svc.UpdateStatus(context.Background(), "656f000000000000000000bb", model.BookingRejected, staff)
		require.NoError(t, err)
		assert.Equal(t, model.BookingRejected, updated.Status)
		assert.Equal(t, []bool{false}, reconciler.calls)
	})

	t.Run("approved booking may still be rejected", func(t *testing.T) {
		f, reconciler := updateFixture(model.BookingApproved)
		_, err := f.svc.UpdateStatus(context.Background(), "656f000000000000000000bb", model.BookingRejected, staff)
		require.NoError(t, err)
		assert.Equal(t, []bool{false}, reconciler.calls)
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		f, _ := updateFixture(model.BookingRejected)
		_, err := f.svc.UpdateStatus(context.Background(), "656f000000000000000000bb", model.BookingApproved, staff)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	})

	t.Run("no-op transition conflicts", func(t *testing.T) {
		f, _ := updateFixture(model.BookingApproved)
		_, err := f.svc.UpdateStatus(context.Background(), "656f000000000000000000bb", model.BookingApproved, staff)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	})

	t.Run("admin may transition any booking", func(t *testing.T) {
		f, _ := updateFixture(model.BookingPending)
		admin := model.Principal{UID: "admin-1", Role: model.RoleAdmin}
		_, err := f.svc.UpdateStatus(context.Background(), "656f000000000000000000bb", model.BookingApproved, admin)
		assert.NoError(t, err)
	})
}

func TestListUpcoming(t *testing.T) {
	t.Run("resident is forbidden", func(t *testing.T) {
		f := newFixture(&fakeBookingRepo{}, &fakeLockRepo{}, &fakeDirectory{}, &fakeReconciler{})
		_, err := f.svc.ListUpcoming(context.Background(), resident, 10, 0)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	})

	t.Run("staff query starts from today", func(t *testing.T) {
		var gotFrom string
		repo := &fakeBookingRepo{
			FindUpcomingApprovedFn: func(_ context.Context, _, fromDate string, _ int, _ int64) ([]*model.Booking, error) {
				gotFrom = fromDate
				return nil, nil
			},
		}
		f := newFixture(repo, &fakeLockRepo{}, &fakeDirectory{}, &fakeReconciler{})

		staff := model.Principal{UID: "staff-1", Role: model.RoleStaff}
		_, err := f.svc.ListUpcoming(context.Background(), staff, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, time.Now().UTC().Format(model.DateLayout), gotFrom)
	})
}
