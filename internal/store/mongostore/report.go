package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinic-api/internal/models"
)

func (s *Store) CreateReport(ctx context.Context, r *models.Report) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.reports.InsertOne(ctx, r)
	return mapErr(err)
}

func (s *Store) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var r models.Report
	if err := s.reports.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

func (s *Store) ListReports(ctx context.Context) ([]models.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.reports.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Report{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteReport(ctx context.Context, id string) error {
	res, err := s.reports.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
