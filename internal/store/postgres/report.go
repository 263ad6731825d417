package postgres

import (
	"context"

	"github.com/harentsoaR/clinic-api/internal/models"
)

func (s *Store) CreateReport(ctx context.Context, r *models.Report) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO reports (id, title, description, file_path) VALUES ($1,$2,$3,$4)
		 RETURNING created_at`,
		r.ID, r.Title, r.Description, r.FilePath,
	).Scan(&r.CreatedAt)
	return mapErr(err)
}

func (s *Store) GetReport(ctx context.Context, id string) (*models.Report, error) {
	r := &models.Report{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, description, file_path, created_at FROM reports WHERE id=$1`, id,
	).Scan(&r.ID, &r.Title, &r.Description, &r.FilePath, &r.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return r, nil
}

func (s *Store) ListReports(ctx context.Context) ([]models.Report, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, file_path, created_at FROM reports
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Report{}
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.FilePath, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DeleteReport(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reports WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
