package postgres

import (
	"context"

	"github.com/harentsoaR/clinic-api/internal/models"
)

const userColumns = `id, email, password_hash, role, first_name, last_name, phone, specialty, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.Phone, &u.Specialty, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, role, first_name, last_name, phone, specialty)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.FirstName, u.LastName, u.Phone, u.Specialty,
	).Scan(&u.CreatedAt)
	return mapErr(err)
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE $1 = '' OR role = $1
		 ORDER BY last_name, id`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) UpdateProfile(ctx context.Context, id string, p models.Profile) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET first_name=$1, last_name=$2, phone=$3 WHERE id=$4`,
		p.FirstName, p.LastName, p.Phone, id,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, hash, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteUser also drops the doctor's open slots (ON DELETE CASCADE).
// Appointments keep their name snapshots.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
