package service

import (
	"context"
	"fmt"

	"courtside/internal/notify/repository"
	"courtside/pkg/config"
	"courtside/pkg/kafka"
	"courtside/pkg/model"
)

// Publisher is the broker-facing half of the fan-out.
type Publisher interface {
	PublishBatch(ctx context.Context, messages []kafka.Message) error
}

type NotifyService interface {
	AnnounceEvent(ctx context.Context, event *model.Event)
}

type notifyService struct {
	repo      repository.NotificationRepository
	publisher Publisher
	cfg       *config.Config
}

func NewNotifyService(repo repository.NotificationRepository, publisher Publisher, cfg *config.Config) NotifyService {
	return &notifyService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
	}
}

// AnnounceEvent queues one notification per resident for a freshly created
// event. Best-effort: failures are logged and never surfaced to the caller,
// and the event stands regardless.
func (s *notifyService) AnnounceEvent(ctx context.Context, event *model.Event) {
	residents, err := s.repo.ResidentIDs(ctx)
	if err != nil {
		s.cfg.Log.Error("Event fan-out aborted, could not list residents", "event_id", event.ID, "error", err)
		return
	}
	if len(residents) == 0 {
		s.cfg.Log.Info("Event fan-out skipped, no residents registered", "event_id", event.ID)
		return
	}

	message := fmt.Sprintf("New event %q at %s on %s",
		event.Name, event.FacilityName, event.StartTime.Format("2006-01-02 15:04"))

	notifications := make([]*model.Notification, 0, len(residents))
	for _, uid := range residents {
		notifications = append(notifications, &model.Notification{
			UserID:  uid,
			EventID: event.ID,
			Message: message,
		})
	}

	inserted, err := s.repo.CreateMany(ctx, notifications)
	if err != nil {
		s.cfg.Log.Error("Event fan-out partially failed",
			"event_id", event.ID, "inserted", inserted, "total", len(notifications), "error", err)
	}

	if s.publisher == nil {
		return
	}

	messages := make([]kafka.Message, 0, len(notifications))
	for _, n := range notifications {
		msg, err := kafka.NewJSONMessage(n.UserID, n)
		if err != nil {
			s.cfg.Log.Warn("Skipping unmarshalable notification", "user_id", n.UserID, "error", err)
			continue
		}
		messages = append(messages, msg)
	}

	if err := s.publisher.PublishBatch(ctx, messages); err != nil {
		s.cfg.Log.Error("Failed to publish event notifications", "event_id", event.ID, "error", err)
	}
}
