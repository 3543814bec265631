package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	facilityerrors "courtside/internal/facilities/errors"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Facilities"

type FacilityRepository interface {
	Create(ctx context.Context, facility *model.Facility) error
	FindByID(ctx context.Context, id string) (*model.Facility, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, facility *model.Facility) error
	Delete(ctx context.Context, id string) error
	ReplaceTimeslots(ctx context.Context, id string, timeslots model.Timeslots) error
	PullSlot(ctx context.Context, id, day, start, end string) error
	SetSlotBooked(ctx context.Context, id, day, start, end string, booked bool) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoFacilityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoFacilityRepository(cfg *config.Config) FacilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFacilityRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds store calls unless we are already inside a transaction;
// a SessionContext cannot be wrapped without breaking the session.
func (r *mongoFacilityRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoFacilityRepository) Create(ctx context.Context, facility *model.Facility) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	facility.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, facility)
	if err != nil {
		return fmt.Errorf("failed to create facility: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		facility.ID = oid.Hex()
	}
	return nil
}

func (r *mongoFacilityRepository) FindByID(ctx context.Context, id string) (*model.Facility, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", facilityerrors.ErrInvalidID, id)
	}

	var facility model.Facility
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&facility)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, facilityerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find facility: %w", err)
	}

	return &facility, nil
}

func (r *mongoFacilityRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find facilities: %w", err)
	}
	defer cursor.Close(ctx)

	var facilities []*model.Facility
	if err = cursor.All(ctx, &facilities); err != nil {
		return nil, fmt.Errorf("failed to decode facilities: %w", err)
	}

	return facilities, nil
}

func (r *mongoFacilityRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count facilities: %w", err)
	}
	return count, nil
}

func (r *mongoFacilityRepository) Update(ctx context.Context, id string, facility *model.Facility) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", facilityerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":        facility.Name,
			"type":        facility.Type,
			"outdoor":     facility.Outdoor,
			"status":      facility.Status,
			"description": facility.Description,
			"features":    facility.Features,
			"location":    facility.Location,
			"capacity":    facility.Capacity,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update facility: %w", err)
	}
	if result.MatchedCount == 0 {
		return facilityerrors.ErrNotFound
	}
	return nil
}

func (r *mongoFacilityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", facilityerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete facility: %w", err)
	}
	if result.DeletedCount == 0 {
		return facilityerrors.ErrNotFound
	}
	return nil
}

func (r *mongoFacilityRepository) ReplaceTimeslots(ctx context.Context, id string, timeslots model.Timeslots) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", facilityerrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{"timeslots": timeslots}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to replace timeslots: %w", err)
	}
	if result.MatchedCount == 0 {
		return facilityerrors.ErrNotFound
	}
	return nil
}

// PullSlot removes exactly one (day, start, end) entry from the template.
// Returns ErrSlotNotFound when no exact triple matched.
func (r *mongoFacilityRepository) PullSlot(ctx context.Context, id, day, start, end string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", facilityerrors.ErrInvalidID, id)
	}

	field := "timeslots." + day
	update := bson.M{
		"$pull": bson.M{
			field: bson.M{"start": start, "end": end},
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove timeslot: %w", err)
	}
	if result.MatchedCount == 0 {
		return facilityerrors.ErrNotFound
	}
	if result.ModifiedCount == 0 {
		return facilityerrors.ErrSlotNotFound
	}
	return nil
}

// SetSlotBooked flips the is_booked flag on one template entry via a
// positional array filter.
func (r *mongoFacilityRepository) SetSlotBooked(ctx context.Context, id, day, start, end string, booked bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", facilityerrors.ErrInvalidID, id)
	}

	field := fmt.Sprintf("timeslots.%s.$[slot].is_booked", day)
	update := bson.M{"$set": bson.M{field: booked}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []any{bson.M{"slot.start": start, "slot.end": end}},
	})

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to update timeslot booking flag: %w", err)
	}
	if result.MatchedCount == 0 {
		return facilityerrors.ErrNotFound
	}
	return nil
}

func (r *mongoFacilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
