package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	eventerrors "courtside/internal/events/errors"
	"courtside/internal/events/repository"
	"courtside/internal/events/validator"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const facilityID = "656f000000000000000000aa"

type fakeEventRepo struct {
	CreateFn                 func(ctx context.Context, event *model.Event) error
	FindByIDFn               func(ctx context.Context, id string) (*model.Event, error)
	FindAllFn                func(ctx context.Context, limit int, offset int64) ([]*model.Event, error)
	CountFn                  func(ctx context.Context) (int64, error)
	ExistsDuplicateFn        func(ctx context.Context, event *model.Event) (bool, error)
	FindByFacilityIntervalFn func(ctx context.Context, facilityID string, start, end time.Time) ([]*model.Event, error)
}

func (f *fakeEventRepo) Create(ctx context.Context, event *model.Event) error {
	return f.CreateFn(ctx, event)
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	return f.FindByIDFn(ctx, id)
}

func (f *fakeEventRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Event, error) {
	return f.FindAllFn(ctx, limit, offset)
}

func (f *fakeEventRepo) Count(ctx context.Context) (int64, error) {
	return f.CountFn(ctx)
}

func (f *fakeEventRepo) ExistsDuplicate(ctx context.Context, event *model.Event) (bool, error) {
	return f.ExistsDuplicateFn(ctx, event)
}

func (f *fakeEventRepo) FindByFacilityInterval(ctx context.Context, facilityID string, start, end time.Time) ([]*model.Event, error) {
	return f.FindByFacilityIntervalFn(ctx, facilityID, start, end)
}

func (f *fakeEventRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type fakeBlockRepo struct {
	CreateFn func(ctx context.Context, block *model.Block) error
}

func (f *fakeBlockRepo) Create(ctx context.Context, block *model.Block) error {
	return f.CreateFn(ctx, block)
}

func (f *fakeBlockRepo) FindByFacility(_ context.Context, _ string, _ int, _ int64) ([]*model.Block, error) {
	return nil, nil
}

type fakeDirectory struct {
	facility *model.Facility
	err      error
}

func (f *fakeDirectory) FindByID(_ context.Context, _ string) (*model.Facility, error) {
	return f.facility, f.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []*model.Event
}

func (f *fakeNotifier) AnnounceEvent(_ context.Context, event *model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

var _ repository.EventRepository = (*fakeEventRepo)(nil)
var _ repository.BlockRepository = (*fakeBlockRepo)(nil)

func newEventService(repo *fakeEventRepo, blocks *fakeBlockRepo, directory *fakeDirectory, notifier *fakeNotifier) EventService {
	cfg := &config.Config{
		OverlapScanLimit: 50,
		WriteTimeout:     time.Second,
		Log:              logger.New(logger.Options{Level: "error", Output: io.Discard}),
	}
	return NewEventService(repo, blocks, directory, notifier, validator.NewEventValidator(cfg.Log), cfg)
}

var admin = model.Principal{UID: "admin-1", Role: model.RoleAdmin}

func futureEvent() *model.Event {
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	return &model.Event{
		FacilityID:   facilityID,
		FacilityName: "Tennis Court A",
		Name:         "Summer Open",
		StartTime:    start,
		EndTime:      start.Add(3 * time.Hour),
	}
}

func TestCreateEvent(t *testing.T) {
	t.Run("non-admin forbidden before any validation", func(t *testing.T) {
		svc := newEventService(&fakeEventRepo{}, &fakeBlockRepo{}, &fakeDirectory{}, &fakeNotifier{})
		staff := model.Principal{UID: "staff-1", Role: model.RoleStaff}

		err := svc.CreateEvent(context.Background(), &model.Event{}, staff)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	})

	t.Run("inverted time range rejected", func(t *testing.T) {
		svc := newEventService(&fakeEventRepo{}, &fakeBlockRepo{}, &fakeDirectory{}, &fakeNotifier{})
		event := futureEvent()
		event.StartTime, event.EndTime = event.EndTime, event.StartTime

		err := svc.CreateEvent(context.Background(), event, admin)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	})

	t.Run("past start rejected", func(t *testing.T) {
		svc := newEventService(&fakeEventRepo{}, &fakeBlockRepo{}, &fakeDirectory{}, &fakeNotifier{})
		event := futureEvent()
		event.StartTime = time.Now().Add(-time.Hour)
		event.EndTime = time.Now().Add(time.Hour)

		err := svc.CreateEvent(context.Background(), event, admin)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	})

	t.Run("identical event is a conflict", func(t *testing.T) {
		repo := &fakeEventRepo{
			ExistsDuplicateFn: func(_ context.Context, _ *model.Event) (bool, error) { return true, nil },
		}
		directory := &fakeDirectory{facility: &model.Facility{ID: facilityID, Name: "Tennis Court A"}}
		svc := newEventService(repo, &fakeBlockRepo{}, directory, &fakeNotifier{})

		err := svc.CreateEvent(context.Background(), futureEvent(), admin)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	})

	t.Run("overlapping event is a conflict regardless of name", func(t *testing.T) {
		candidate := futureEvent()
		neighbor := &model.Event{
			Name:      "Different Name",
			StartTime: candidate.StartTime.Add(time.Hour),
			EndTime:   candidate.EndTime.Add(time.Hour),
		}
		repo := &fakeEventRepo{
			ExistsDuplicateFn: func(_ context.Context, _ *model.Event) (bool, error) { return false, nil },
			FindByFacilityIntervalFn: func(_ context.Context, _ string, _, _ time.Time) ([]*model.Event, error) {
				return []*model.Event{neighbor}, nil
			},
		}
		directory := &fakeDirectory{facility: &model.Facility{ID: facilityID, Name: "Tennis Court A"}}
		svc := newEventService(repo, &fakeBlockRepo{}, directory, &fakeNotifier{})

		err := svc.CreateEvent(context.Background(), candidate, admin)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	})

	t.Run("adjacent event schedules and fans out", func(t *testing.T) {
		candidate := futureEvent()
		neighbor := &model.Event{
			StartTime: candidate.EndTime,
			EndTime:   candidate.EndTime.Add(time.Hour),
		}
		repo := &fakeEventRepo{
			ExistsDuplicateFn: func(_ context.Context, _ *model.Event) (bool, error) { return false, nil },
			FindByFacilityIntervalFn: func(_ context.Context, _ string, _, _ time.Time) ([]*model.Event, error) {
				return []*model.Event{neighbor}, nil
			},
			CreateFn: func(_ context.Context, event *model.Event) error {
				event.ID = "656f000000000000000000cc"
				return nil
			},
		}
		directory := &fakeDirectory{facility: &model.Facility{ID: facilityID, Name: "Tennis Court A"}}
		notifier := &fakeNotifier{}
		svc := newEventService(repo, &fakeBlockRepo{}, directory, notifier)

		err := svc.CreateEvent(context.Background(), candidate, admin)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", candidate.CreatedBy)

		assert.Eventually(t, func() bool { return notifier.count() == 1 },
			time.Second, 10*time.Millisecond, "fan-out should run asynchronously")
	})

	t.Run("unknown facility is not found", func(t *testing.T) {
		directory := &fakeDirectory{err: apperrors.NotFoundWithID("Facility", facilityID)}
		svc := newEventService(&fakeEventRepo{}, &fakeBlockRepo{}, directory, &fakeNotifier{})

		err := svc.CreateEvent(context.Background(), futureEvent(), admin)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})
}

func TestBlockSlot(t *testing.T) {
	validBlock := func() *model.Block {
		return &model.Block{
			FacilityID:   facilityID,
			FacilityName: "Tennis Court A",
			Slot:         "09:00 - 10:00",
			Date:         "2026-09-07",
		}
	}

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc := newEventService(&fakeEventRepo{}, &fakeBlockRepo{}, &fakeDirectory{}, &fakeNotifier{})
		resident := model.Principal{UID: "resident-1", Role: model.RoleResident}

		err := svc.BlockSlot(context.Background(), validBlock(), resident)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	})

	t.Run("missing slot rejected", func(t *testing.T) {
		svc := newEventService(&fakeEventRepo{}, &fakeBlockRepo{}, &fakeDirectory{}, &fakeNotifier{})
		block := validBlock()
		block.Slot = ""

		err := svc.BlockSlot(context.Background(), block, admin)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	})

	t.Run("duplicate block is a conflict", func(t *testing.T) {
		blocks := &fakeBlockRepo{
			CreateFn: func(_ context.Context, _ *model.Block) error {
				return eventerrors.ErrDuplicateBlock
			},
		}
		directory := &fakeDirectory{facility: &model.Facility{ID: facilityID, Name: "Tennis Court A"}}
		svc := newEventService(&fakeEventRepo{}, blocks, directory, &fakeNotifier{})

		err := svc.BlockSlot(context.Background(), validBlock(), admin)
		appErr := apperrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	})

	t.Run("block derives the weekday from its date", func(t *testing.T) {
		var created *model.Block
		blocks := &fakeBlockRepo{
			CreateFn: func(_ context.Context, block *model.Block) error {
				created = block
				return nil
			},
		}
		directory := &fakeDirectory{facility: &model.Facility{ID: facilityID, Name: "Tennis Court A"}}
		svc := newEventService(&fakeEventRepo{}, blocks, directory, &fakeNotifier{})

		err := svc.BlockSlot(context.Background(), validBlock(), admin)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "Monday", created.Day)
		assert.Equal(t, "admin-1", created.CreatedBy)
	})
}
