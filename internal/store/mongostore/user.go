package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinic-api/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.users.InsertOne(ctx, u)
	return mapErr(err)
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// UserByEmail expects email already lower-cased by the caller.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	opts := options.Find().SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, p models.Profile) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"phone":      p.Phone,
	}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password_hash": hash}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	_, err = s.slots.DeleteMany(ctx, bson.M{"doctor_id": id})
	return mapErr(err)
}
