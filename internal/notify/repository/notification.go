package repository

import (
	"context"
	"fmt"
	"time"

	"courtside/pkg/config"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName     = "Notifications"
	UserCollectionName = "Users"
)

type NotificationRepository interface {
	CreateMany(ctx context.Context, notifications []*model.Notification) (int, error)
	ResidentIDs(ctx context.Context) ([]string, error)
}

type mongoNotificationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	users      *mongo.Collection
}

func NewMongoNotificationRepository(cfg *config.Config) NotificationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoNotificationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		users:      db.Collection(UserCollectionName),
	}
}

// CreateMany inserts the fan-out unordered so one bad record does not stop
// the rest. Returns how many records landed.
func (r *mongoNotificationRepository) CreateMany(ctx context.Context, notifications []*model.Notification) (int, error) {
	if len(notifications) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(notifications))
	for _, n := range notifications {
		n.CreatedAt = now
		docs = append(docs, n)
	}

	result, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if result != nil && len(result.InsertedIDs) > 0 {
		return len(result.InsertedIDs), err
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert notifications: %w", err)
	}
	return len(result.InsertedIDs), nil
}

// ResidentIDs lists the principal IDs of every resident account.
func (r *mongoNotificationRepository) ResidentIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"role": model.RoleResident}
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find residents: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode resident: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate residents: %w", err)
	}

	return ids, nil
}
