package service

import (
	"context"
	"errors"
	"time"

	"courtside/internal/conflict"
	eventerrors "courtside/internal/events/errors"
	"courtside/internal/events/repository"
	"courtside/internal/events/validator"
	facilityerrors "courtside/internal/facilities/errors"
	notifyservice "courtside/internal/notify/service"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// FacilityDirectory resolves facility references before scheduling against
// them.
type FacilityDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Facility, error)
}

type EventService interface {
	CreateEvent(ctx context.Context, event *model.Event, principal model.Principal) error
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context, limit int, offset int64) ([]*model.Event, int64, error)
	BlockSlot(ctx context.Context, block *model.Block, principal model.Principal) error
	ListBlocks(ctx context.Context, facilityID string, limit int, offset int64) ([]*model.Block, error)
}

type eventService struct {
	repo       repository.EventRepository
	blocks     repository.BlockRepository
	facilities FacilityDirectory
	notifier   notifyservice.NotifyService
	validator  *validator.EventValidator
	cfg        *config.Config
}

func NewEventService(
	repo repository.EventRepository,
	blocks repository.BlockRepository,
	facilities FacilityDirectory,
	notifier notifyservice.NotifyService,
	eventValidator *validator.EventValidator,
	cfg *config.Config,
) EventService {
	return &eventService{
		repo:       repo,
		blocks:     blocks,
		facilities: facilities,
		notifier:   notifier,
		validator:  eventValidator,
		cfg:        cfg,
	}
}

// CreateEvent schedules a calendar event. Admin only, and the role gate
// runs before any validation so non-admins learn nothing about the payload.
func (s *eventService) CreateEvent(ctx context.Context, event *model.Event, principal model.Principal) error {
	if !principal.IsAdmin() {
		return apperrors.Forbidden("Only admins may schedule events")
	}

	event.Name = sanitizer.NormalizeName(event.Name)
	event.Description = sanitizer.NormalizeDescription(event.Description)
	event.CreatedBy = principal.UID

	if err := s.validator.ValidateEvent(event); err != nil {
		s.cfg.Log.Warn("Event validation failed", "error", err)
		return apperrors.Validation("Event validation failed", map[string]any{"error": err.Error()})
	}

	if err := conflict.ValidateInterval(event.StartTime, event.EndTime); err != nil {
		return apperrors.Validation("Invalid event time range", map[string]any{"error": err.Error()})
	}
	if event.StartTime.Before(time.Now()) {
		return apperrors.Validation("Event start time cannot be in the past", map[string]any{
			"startTime": event.StartTime,
		})
	}

	if _, err := s.lookupFacility(ctx, event.FacilityID); err != nil {
		return err
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifySchedule(sessCtx, event); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, event); err != nil {
			return apperrors.Internal("Failed to create event", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Event scheduling failed",
			"facility_id", event.FacilityID, "name", event.Name, "error", err)
		return err
	}

	s.cfg.Log.Info("Event created successfully",
		"id", event.ID, "facility_id", event.FacilityID, "name", event.Name)

	// Fan-out stays outside the transaction. A slow or dead broker must
	// not hold the event hostage.
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
		defer cancel()
		s.notifier.AnnounceEvent(notifyCtx, event)
	}()

	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Event", id)
		}
		if errors.Is(err, eventerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid event ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve event", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, limit int, offset int64) ([]*model.Event, int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count events", "error", err)
		return nil, 0, apperrors.Internal("Failed to count events", err)
	}

	events, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list events", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve events", err)
	}

	return events, count, nil
}

// BlockSlot excludes one recurring slot on one date. Admin only.
func (s *eventService) BlockSlot(ctx context.Context, block *model.Block, principal model.Principal) error {
	if !principal.IsAdmin() {
		return apperrors.Forbidden("Only admins may block slots")
	}

	block.CreatedBy = principal.UID

	if err := s.validator.ValidateBlock(block); err != nil {
		s.cfg.Log.Warn("Block validation failed", "error", err)
		return apperrors.Validation("Block validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.lookupFacility(ctx, block.FacilityID); err != nil {
		return err
	}

	if date, err := time.Parse(model.DateLayout, block.Date); err == nil {
		block.Day = model.WeekdayOf(date)
	}

	if err := s.blocks.Create(ctx, block); err != nil {
		if errors.Is(err, eventerrors.ErrDuplicateBlock) {
			return apperrors.Conflict("This slot is already blocked for that date")
		}
		s.cfg.Log.Error("Failed to create block",
			"facility_id", block.FacilityID, "slot", block.Slot, "date", block.Date, "error", err)
		return apperrors.Internal("Failed to block slot", err)
	}

	s.cfg.Log.Info("Slot blocked",
		"facility_id", block.FacilityID, "slot", block.Slot, "date", block.Date, "by", principal.UID)
	return nil
}

func (s *eventService) ListBlocks(ctx context.Context, facilityID string, limit int, offset int64) ([]*model.Block, error) {
	if facilityID == "" {
		return nil, apperrors.InvalidInput("Facility ID cannot be empty")
	}

	blocks, err := s.blocks.FindByFacility(ctx, facilityID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list blocks", "facility_id", facilityID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve blocks", err)
	}
	return blocks, nil
}

// --- Helpers ---

// verifySchedule enforces the duplicate and overlap guards. Must run inside
// the scheduling transaction.
func (s *eventService) verifySchedule(ctx context.Context, event *model.Event) error {
	duplicate, err := s.repo.ExistsDuplicate(ctx, event)
	if err != nil {
		return apperrors.Internal("Failed to check duplicate event", err)
	}
	if duplicate {
		return apperrors.Conflict("An identical event already exists")
	}

	neighbors, err := s.repo.FindByFacilityInterval(ctx, event.FacilityID, event.StartTime, event.EndTime)
	if err != nil {
		return apperrors.Internal("Failed to scan events for overlap", err)
	}

	existing := make([]conflict.Interval, 0, len(neighbors))
	for _, n := range neighbors {
		existing = append(existing, conflict.Interval{Start: n.StartTime, End: n.EndTime})
	}

	candidate := conflict.Interval{Start: event.StartTime, End: event.EndTime}
	if err := conflict.CheckInterval(existing, candidate); err != nil {
		var c *conflict.Conflict
		if errors.As(err, &c) {
			return apperrors.Conflict("Event overlaps an existing event on this facility")
		}
		return apperrors.Internal("Failed to validate event interval", err)
	}

	return nil
}

func (s *eventService) lookupFacility(ctx context.Context, id string) (*model.Facility, error) {
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
