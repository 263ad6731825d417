package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinic-api/internal/models"
)

func (s *Store) AddSlot(ctx context.Context, sl *models.Slot) error {
	sl.DateTime = models.Wall(sl.DateTime)
	if sl.CreatedAt.IsZero() {
		sl.CreatedAt = time.Now().UTC()
	}
	_, err := s.slots.InsertOne(ctx, sl)
	return mapErr(err)
}

func (s *Store) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	var sl models.Slot
	if err := s.slots.FindOne(ctx, bson.M{"_id": id}).Decode(&sl); err != nil {
		return nil, mapErr(err)
	}
	return &sl, nil
}

func (s *Store) SlotAt(ctx context.Context, doctorID string, t time.Time) (*models.Slot, error) {
	var sl models.Slot
	err := s.slots.FindOne(ctx, bson.M{"doctor_id": doctorID, "date_time": models.Wall(t)}).Decode(&sl)
	if err != nil {
		return nil, mapErr(err)
	}
	return &sl, nil
}

func (s *Store) ListSlots(ctx context.Context, doctorID string) ([]models.Slot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: 1}})
	cur, err := s.slots.Find(ctx, bson.M{"doctor_id": doctorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Slot{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConsumeSlot relies on FindOneAndDelete being atomic per document.
func (s *Store) ConsumeSlot(ctx context.Context, id string) (*models.Slot, error) {
	var sl models.Slot
	err := s.slots.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&sl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrSlotUnavailable
	}
	if err != nil {
		return nil, err
	}
	return &sl, nil
}

func (s *Store) DeleteSlot(ctx context.Context, id string) error {
	_, err := s.slots.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
