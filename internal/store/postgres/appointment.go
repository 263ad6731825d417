package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/harentsoaR/clinic-api/internal/models"
)

func (s *Store) BookSlot(ctx context.Context, slotID string, a *models.Appointment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// consume first: the loser of a race never reaches the insert
	err = tx.QueryRow(ctx,
		`DELETE FROM slots WHERE id=$1 AND doctor_id=$2 RETURNING date_time`,
		slotID, a.DoctorID,
	).Scan(&a.DateTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrSlotUnavailable
	}
	if err != nil {
		return mapErr(err)
	}
	a.DateTime = models.Wall(a.DateTime)

	err = tx.QueryRow(ctx,
		`INSERT INTO appointments (id, patient_id, doctor_id, patient_name, doctor_name, date_time, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.DoctorID, a.PatientName, a.DoctorName, a.DateTime, a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}

	return tx.Commit(ctx)
}

const appointmentColumns = `a.id, a.patient_id, a.doctor_id, a.patient_name, a.doctor_name,
	a.date_time, a.status, a.created_at, a.updated_at`

func (s *Store) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	a := &models.Appointment{}
	err := s.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments a WHERE a.id=$1`, id,
	).Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.PatientName, &a.DoctorName,
		&a.DateTime, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	a.DateTime = models.Wall(a.DateTime)
	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]models.AppointmentView, error) {
	order := "DESC"
	if f.Order == models.Ascending {
		order = "ASC"
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentColumns+`, COALESCE(u.phone, '')
		 FROM appointments a
		 LEFT JOIN users u ON u.id = a.patient_id
		 WHERE ($1 = '' OR a.doctor_id = $1)
		   AND ($2 = '' OR a.patient_id = $2)
		 ORDER BY a.date_time `+order+`, a.id`,
		f.DoctorID, f.PatientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AppointmentView{}
	for rows.Next() {
		var v models.AppointmentView
		if err := rows.Scan(&v.ID, &v.PatientID, &v.DoctorID, &v.PatientName, &v.DoctorName,
			&v.DateTime, &v.Status, &v.CreatedAt, &v.UpdatedAt, &v.PatientPhone); err != nil {
			return nil, err
		}
		v.DateTime = models.Wall(v.DateTime)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) TransitionStatus(ctx context.Context, id string, from, to models.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET status=$1, updated_at=NOW()
		 WHERE id=$2 AND status=$3`, to, id, from,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// lost to a concurrent change, or never existed
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM appointments WHERE id=$1)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return models.ErrNotFound
	}
	return models.ErrInvalidTransition
}
