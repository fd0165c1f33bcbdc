package repository

import (
	"context"
	"fmt"
	"time"

	"clinicbook/pkg/config"
	"clinicbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoScheduleStore struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoScheduleStore(cfg *config.Config) ScheduleStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return newMongoScheduleStore(db.Collection(CollectionName), cfg)
}

func newMongoScheduleStore(collection *mongo.Collection, cfg *config.Config) *mongoScheduleStore {
	return &mongoScheduleStore{
		cfg:        cfg,
		collection: collection,
	}
}

// withTimeout bounds ctx by timeout unless the caller already set a
// tighter deadline.
func (r *mongoScheduleStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoScheduleStore) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *mongoScheduleStore) Remove(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete booking: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// List pushes the resource filter down to MongoDB. The date filter is a
// prefix match on the canonical start string, so it is applied after
// decoding with the same matcher the memory store uses.
func (r *mongoScheduleStore) List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Resource != "" {
		query["resource"] = filter.Resource
	}

	// _id is a UUIDv7, so it breaks start ties in creation order.
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var decoded []*model.Booking
	if err = cursor.All(ctx, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]*model.Booking, 0, len(decoded))
	for _, b := range decoded {
		b.Start = b.Start.UTC()
		b.End = b.End.UTC()
		if filter.Matches(b) {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}
