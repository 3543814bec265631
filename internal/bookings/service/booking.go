package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	bookingerrors "courtside/internal/bookings/errors"
	facilityerrors "courtside/internal/facilities/errors"
	"courtside/internal/bookings/repository"
	"courtside/internal/bookings/validator"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// FacilityDirectory is the slice of the facility store admission needs:
// existence, ownership and capacity.
type FacilityDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Facility, error)
}

// TemplateReconciler flips the template slot's booked flag when a booking
// changes status.
type TemplateReconciler interface {
	SetSlotBooked(ctx context.Context, facilityID, date, slot string, booked bool) error
}

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking, principal model.Principal) error
	GetByID(ctx context.Context, id string, principal model.Principal) (*model.Booking, error)
	ListMine(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Booking, int64, error)
	ListUpcoming(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id, status string, principal model.Principal) (*model.Booking, error)
}

type bookingService struct {
	repo       repository.BookingRepository
	lockRepo   repository.SlotLockRepository
	facilities FacilityDirectory
	reconciler TemplateReconciler
	validator  *validator.BookingValidator
	cfg        *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	facilities FacilityDirectory,
	reconciler TemplateReconciler,
	bookingValidator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		lockRepo:   lockRepo,
		facilities: facilities,
		reconciler: reconciler,
		validator:  bookingValidator,
		cfg:        cfg,
	}
}

// Create admits a reservation request. The duplicate and capacity checks
// run inside one transaction behind an advisory slot lock, so two
// concurrent requests for the last capacity unit cannot both commit.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking, principal model.Principal) error {
	booking.UserID = principal.UID
	booking.UserEmail = principal.Email
	booking.Status = model.BookingPending

	if err := s.validate(booking); err != nil {
		return err
	}

	facility, err := s.lookupFacility(ctx, booking.FacilityID)
	if err != nil {
		return err
	}
	booking.FacilityName = facility.Name
	booking.FacilityStaff = facility.StaffID

	lockID, err := s.acquireSlotLock(ctx, booking.FacilityID, booking.Date, booking.Slot)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(context.WithoutCancel(ctx), lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyAdmission(sessCtx, booking, facility.SlotCapacity()); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Booking admission failed",
			"facility_id", booking.FacilityID,
			"date", booking.Date,
			"slot", booking.Slot,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"facility_id", booking.FacilityID,
		"date", booking.Date,
		"slot", booking.Slot,
		"user_id", booking.UserID,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string, principal model.Principal) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.UserID != principal.UID && !principal.CanManage(booking.FacilityStaff) {
		return nil, apperrors.Forbidden("You may not view this booking")
	}
	return booking, nil
}

func (s *bookingService) ListMine(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, principal.UID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "user_id", principal.UID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByUser(ctx, principal.UID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "user_id", principal.UID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// ListUpcoming is the staff dashboard feed: approved future bookings on
// facilities the caller owns, ascending by date.
func (s *bookingService) ListUpcoming(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Booking, error) {
	if !principal.IsStaff() && !principal.IsAdmin() {
		return nil, apperrors.Forbidden("Only staff may view upcoming bookings")
	}

	today := time.Now().UTC().Format(model.DateLayout)
	bookings, err := s.repo.FindUpcomingApproved(ctx, principal.UID, today, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list upcoming bookings", "staff_id", principal.UID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve upcoming bookings", err)
	}
	return bookings, nil
}

// UpdateStatus moves a booking through its state machine. Rejected is
// terminal; a transition into rejected clears the template slot's booked
// flag and approval sets it, in the same transaction as the status write.
func (s *bookingService) UpdateStatus(ctx context.Context, id, status string, principal model.Principal) (*model.Booking, error) {
	if status != model.BookingApproved && status != model.BookingRejected {
		return nil, apperrors.Validation("Invalid status value", map[string]any{
			"status":  status,
			"allowed": []string{model.BookingApproved, model.BookingRejected},
		})
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !principal.CanManage(booking.FacilityStaff) {
		return nil, apperrors.Forbidden("Only the facility's staff or an admin may change booking status")
	}

	if booking.Status == model.BookingRejected {
		return nil, apperrors.Conflict("Rejected bookings cannot change status")
	}
	if booking.Status == status {
		return nil, apperrors.Conflict(fmt.Sprintf("Booking is already %s", status))
	}

	var updated *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, updateErr := s.repo.UpdateStatus(sessCtx, id, status)
		if updateErr != nil {
			if errors.Is(updateErr, bookingerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to update booking status", updateErr)
		}
		updated = result

		booked := status == model.BookingApproved
		if err := s.reconciler.SetSlotBooked(sessCtx, booking.FacilityID, booking.Date, booking.Slot, booked); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to transition booking", "id", id, "status", status, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking status updated", "id", id, "status", status, "by", principal.UID)
	return updated, nil
}

// --- Helpers ---

func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) lookupFacility(ctx context.Context, id string) (*model.Facility, error) {
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

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// verifyAdmission runs the duplicate and capacity checks. Must execute
// inside the admission transaction.
func (s *bookingService) verifyAdmission(ctx context.Context, booking *model.Booking, capacity int) error {
	userCount, err := s.repo.CountUserActive(ctx, booking.FacilityID, booking.Date, booking.Slot, booking.UserID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}
	if userCount > 0 {
		return apperrors.Conflict("You already have a booking for this slot")
	}

	activeCount, err := s.repo.CountActive(ctx, booking.FacilityID, booking.Date, booking.Slot)
	if err != nil {
		return apperrors.Internal("Failed to check slot capacity", err)
	}
	if activeCount >= int64(capacity) {
		return apperrors.Conflict("Slot is fully booked")
	}

	return nil
}

func (s *bookingService) acquireSlotLock(ctx context.Context, facilityID, date, slot string) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%s_%s", facilityID, date, strings.ReplaceAll(slot, " ", ""))

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	if err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
