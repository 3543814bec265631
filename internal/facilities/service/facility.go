package service

import (
	"context"
	"errors"
	"sync"

	facilityerrors "courtside/internal/facilities/errors"
	"courtside/internal/facilities/repository"
	"courtside/internal/facilities/validator"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"
)

type FacilityService interface {
	Create(ctx context.Context, facility *model.Facility, principal model.Principal) error
	GetByID(ctx context.Context, id string) (*model.Facility, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, int64, error)
	Update(ctx context.Context, id string, updates *model.FacilityUpdate, principal model.Principal) error
	UpdateStatus(ctx context.Context, id, status string, principal model.Principal) error
	Delete(ctx context.Context, id string, principal model.Principal) error
	SetTimeslots(ctx context.Context, id string, timeslots model.Timeslots, principal model.Principal) (model.Timeslots, error)
	GetTimeslots(ctx context.Context, id string) (model.Timeslots, error)
	RemoveSlot(ctx context.Context, id, day, start, end string, principal model.Principal) (*model.TimeSlot, error)
	SetSlotBooked(ctx context.Context, facilityID, date, slot string, booked bool) error
}

type facilityService struct {
	repo      repository.FacilityRepository
	validator *validator.FacilityValidator
	cfg       *config.Config
}

func NewFacilityService(
	repo repository.FacilityRepository,
	validator *validator.FacilityValidator,
	cfg *config.Config,
) FacilityService {
	return &facilityService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *facilityService) Create(ctx context.Context, facility *model.Facility, principal model.Principal) error {
	if !principal.IsStaff() && !principal.IsAdmin() {
		return apperrors.Forbidden("Only staff may create facilities")
	}

	facility.StaffID = principal.UID
	if facility.Status == "" {
		facility.Status = model.FacilityAvailable
	}
	if facility.Capacity <= 0 {
		facility.Capacity = s.cfg.SlotCapacity
	}
	s.sanitize(facility)

	if err := s.validator.Validate(facility); err != nil {
		s.cfg.Log.Warn("Facility validation failed", "error", err)
		return apperrors.Validation("Facility validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, facility); err != nil {
		s.cfg.Log.Error("Failed to create facility", "error", err)
		return apperrors.Internal("Failed to create facility", err)
	}

	s.cfg.Log.Info("Facility created successfully",
		"id", facility.ID,
		"name", facility.Name,
		"staff_id", facility.StaffID,
	)
	return nil
}

func (s *facilityService) GetByID(ctx context.Context, id string) (*model.Facility, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Facility ID cannot be empty")
	}

	facility, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}
	return facility, nil
}

func (s *facilityService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, int64, error) {
	var count int64
	var facilities []*model.Facility
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count facilities", "error", errCount)
			errCount = apperrors.Internal("Failed to count facilities", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		facilities, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list facilities", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve facilities", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return facilities, count, nil
}

func (s *facilityService) Update(ctx context.Context, id string, updates *model.FacilityUpdate, principal model.Principal) error {
	existing, err := s.loadOwned(ctx, id, principal)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Facility update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Facility validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, facilityerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Facility", id)
		}
		s.cfg.Log.Error("Failed to update facility", "id", id, "error", err)
		return apperrors.Internal("Failed to update facility", err)
	}

	s.cfg.Log.Info("Facility updated successfully", "id", id)
	return nil
}

func (s *facilityService) UpdateStatus(ctx context.Context, id, status string, principal model.Principal) error {
	switch status {
	case model.FacilityAvailable, model.FacilityClosed, model.FacilityUnderMaintenance:
	default:
		return apperrors.Validation("Invalid facility status", map[string]any{"status": status})
	}

	existing, err := s.loadOwned(ctx, id, principal)
	if err != nil {
		return err
	}

	existing.Status = status
	if err := s.repo.Update(ctx, id, existing); err != nil {
		s.cfg.Log.Error("Failed to update facility status", "id", id, "error", err)
		return apperrors.Internal("Failed to update facility status", err)
	}

	s.cfg.Log.Info("Facility status updated", "id", id, "status", status)
	return nil
}

func (s *facilityService) Delete(ctx context.Context, id string, principal model.Principal) error {
	if _, err := s.loadOwned(ctx, id, principal); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, facilityerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Facility", id)
		}
		s.cfg.Log.Error("Failed to delete facility", "id", id, "error", err)
		return apperrors.Internal("Failed to delete facility", err)
	}

	s.cfg.Log.Info("Facility deleted successfully", "id", id)
	return nil
}

// SetTimeslots replaces the weekly template after validating every day.
// The write is all-or-nothing: one bad range anywhere aborts the whole
// replacement.
func (s *facilityService) SetTimeslots(ctx context.Context, id string, timeslots model.Timeslots, principal model.Principal) (model.Timeslots, error) {
	if _, err := s.loadOwned(ctx, id, principal); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateTimeslots(timeslots); err != nil {
		s.cfg.Log.Warn("Timeslot template rejected", "facility_id", id, "error", err)
		return nil, apperrors.Validation("Timeslot template validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.ReplaceTimeslots(ctx, id, timeslots); err != nil {
		if errors.Is(err, facilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Facility", id)
		}
		s.cfg.Log.Error("Failed to store timeslot template", "facility_id", id, "error", err)
		return nil, apperrors.Internal("Failed to store timeslot template", err)
	}

	s.cfg.Log.Info("Timeslot template replaced", "facility_id", id, "days", len(timeslots))
	return timeslots, nil
}

func (s *facilityService) GetTimeslots(ctx context.Context, id string) (model.Timeslots, error) {
	facility, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if facility.Timeslots == nil {
		return model.Timeslots{}, nil
	}
	return facility.Timeslots, nil
}

// RemoveSlot deletes exactly one (day, start, end) entry and returns it.
func (s *facilityService) RemoveSlot(ctx context.Context, id, day, start, end string, principal model.Principal) (*model.TimeSlot, error) {
	if day == "" || start == "" || end == "" {
		return nil, apperrors.InvalidInput("day, start and end are required")
	}
	if !model.IsWeekday(day) {
		return nil, apperrors.InvalidInput("invalid weekday name: " + day)
	}

	facility, err := s.loadOwned(ctx, id, principal)
	if err != nil {
		return nil, err
	}

	var removed *model.TimeSlot
	for _, slot := range facility.Timeslots[day] {
		if slot.Start == start && slot.End == end {
			copied := slot
			removed = &copied
			break
		}
	}
	if removed == nil {
		return nil, apperrors.NotFound("Timeslot")
	}

	if err := s.repo.PullSlot(ctx, id, day, start, end); err != nil {
		if errors.Is(err, facilityerrors.ErrSlotNotFound) {
			return nil, apperrors.NotFound("Timeslot")
		}
		if errors.Is(err, facilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Facility", id)
		}
		s.cfg.Log.Error("Failed to remove timeslot", "facility_id", id, "day", day, "error", err)
		return nil, apperrors.Internal("Failed to remove timeslot", err)
	}

	s.cfg.Log.Info("Timeslot removed", "facility_id", id, "day", day, "start", start, "end", end)
	return removed, nil
}

// SetSlotBooked reconciles the template flag for a booking transition. The
// date picks the weekday; a template without that exact entry is a no-op,
// not an error.
func (s *facilityService) SetSlotBooked(ctx context.Context, facilityID, date, slot string, booked bool) error {
	day, err := weekdayOfDate(date)
	if err != nil {
		return apperrors.InvalidInput("invalid booking date: " + date)
	}
	start, end, ok := model.SplitSlot(slot)
	if !ok {
		return apperrors.InvalidInput("invalid slot format: " + slot)
	}

	if err := s.repo.SetSlotBooked(ctx, facilityID, day, start, end, booked); err != nil {
		if errors.Is(err, facilityerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Facility", facilityID)
		}
		s.cfg.Log.Error("Failed to reconcile timeslot flag",
			"facility_id", facilityID,
			"day", day,
			"slot", slot,
			"booked", booked,
			"error", err,
		)
		return apperrors.Internal("Failed to reconcile timeslot flag", err)
	}
	return nil
}

// --- Helpers ---

func (s *facilityService) loadOwned(ctx context.Context, id string, principal model.Principal) (*model.Facility, error) {
	facility, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(facility.StaffID) {
		return nil, apperrors.Forbidden("Only the owning staff member or an admin may modify this facility")
	}
	return facility, nil
}

func (s *facilityService) sanitize(f *model.Facility) {
	f.Name = sanitizer.NormalizeName(f.Name)
	f.Type = sanitizer.NormalizeName(f.Type)
	f.Description = sanitizer.NormalizeDescription(f.Description)
	f.Features = sanitizer.NormalizeFeatures(f.Features)
}

func (s *facilityService) mergeUpdates(existing *model.Facility, updates *model.FacilityUpdate) *model.Facility {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Type != "" {
		merged.Type = updates.Type
	}
	if updates.Outdoor != nil {
		merged.Outdoor = *updates.Outdoor
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Description != "" {
		merged.Description = updates.Description
	}
	if updates.Features != nil {
		merged.Features = *updates.Features
	}
	if updates.Location != nil {
		merged.Location = updates.Location
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}

	return &merged
}

func (s *facilityService) translateLookupError(err error, id string) error {
	if errors.Is(err, facilityerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Facility", id)
	}
	if errors.Is(err, facilityerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid facility ID format")
	}
	return apperrors.Internal("Failed to retrieve facility", err)
}

func weekdayOfDate(date string) (string, error) {
	t, err := parseDate(date)
	if err != nil {
		return "", err
	}
	return model.WeekdayOf(t), nil
}
