package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/harentsoaR/clinic-api/internal/models"
)

func (s *Store) AddSlot(ctx context.Context, sl *models.Slot) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO slots (id, doctor_id, date_time) VALUES ($1,$2,$3)
		 RETURNING created_at`,
		sl.ID, sl.DoctorID, models.Wall(sl.DateTime),
	).Scan(&sl.CreatedAt)
	return mapErr(err)
}

func (s *Store) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	sl := &models.Slot{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, doctor_id, date_time, created_at FROM slots WHERE id=$1`, id,
	).Scan(&sl.ID, &sl.DoctorID, &sl.DateTime, &sl.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	sl.DateTime = models.Wall(sl.DateTime)
	return sl, nil
}

func (s *Store) SlotAt(ctx context.Context, doctorID string, t time.Time) (*models.Slot, error) {
	sl := &models.Slot{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, doctor_id, date_time, created_at FROM slots
		 WHERE doctor_id=$1 AND date_time=$2`, doctorID, models.Wall(t),
	).Scan(&sl.ID, &sl.DoctorID, &sl.DateTime, &sl.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	sl.DateTime = models.Wall(sl.DateTime)
	return sl, nil
}

func (s *Store) ListSlots(ctx context.Context, doctorID string) ([]models.Slot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, doctor_id, date_time, created_at FROM slots
		 WHERE doctor_id=$1
		 ORDER BY date_time`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Slot{}
	for rows.Next() {
		var sl models.Slot
		if err := rows.Scan(&sl.ID, &sl.DoctorID, &sl.DateTime, &sl.CreatedAt); err != nil {
			return nil, err
		}
		sl.DateTime = models.Wall(sl.DateTime)
		out = append(out, sl)
	}
	return out, rows.Err()
}

// ConsumeSlot is a single DELETE ... RETURNING; a concurrent caller blocks on
// the row lock and then finds nothing to delete.
func (s *Store) ConsumeSlot(ctx context.Context, id string) (*models.Slot, error) {
	sl := &models.Slot{}
	err := s.pool.QueryRow(ctx,
		`DELETE FROM slots WHERE id=$1
		 RETURNING id, doctor_id, date_time, created_at`, id,
	).Scan(&sl.ID, &sl.DoctorID, &sl.DateTime, &sl.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrSlotUnavailable
	}
	if err != nil {
		return nil, mapErr(err)
	}
	sl.DateTime = models.Wall(sl.DateTime)
	return sl, nil
}

func (s *Store) DeleteSlot(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM slots WHERE id=$1`, id)
	return mapErr(err)
}
