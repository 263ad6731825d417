// Package mongostore is the document backend. Booking needs a multi-document
// transaction, so the server must run as a replica set.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client       *mongo.Client
	users        *mongo.Collection
	slots        *mongo.Collection
	appointments *mongo.Collection
	reports      *mongo.Collection
}

func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:       client,
		users:        db.Collection("users"),
		slots:        db.Collection("slots"),
		appointments: db.Collection("appointments"),
		reports:      db.Collection("reports"),
	}
}

// Open connects to uri, pings and ensures indexes on database name.
func Open(ctx context.Context, uri, name string) (*Store, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := New(client, client.Database(name))
	if err := s.EnsureIndexes(cctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	idx := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "role", Value: 1}}}},
		{s.slots, mongo.IndexModel{
			Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "date_time", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.appointments, mongo.IndexModel{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "date_time", Value: -1}}}},
		{s.appointments, mongo.IndexModel{Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "date_time", Value: -1}}}},
	}
	for _, i := range idx {
		if _, err := i.coll.Indexes().CreateOne(ctx, i.model); err != nil {
			return fmt.Errorf("mongo index %s: %w", i.coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", models.ErrConflict, err)
	}
	return err
}
