// Package store defines the persistence contracts shared by the postgres,
// mongo and memory backends. Implementations return the sentinel errors of
// the models package.
package store

import (
	"context"
	"time"

	"github.com/harentsoaR/clinic-api/internal/models"
)

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, p models.Profile) error
	UpdatePassword(ctx context.Context, id, hash string) error
	DeleteUser(ctx context.Context, id string) error
}

type Slots interface {
	// AddSlot fails with models.ErrConflict when the doctor already offers
	// the same time.
	AddSlot(ctx context.Context, s *models.Slot) error
	GetSlot(ctx context.Context, id string) (*models.Slot, error)
	// SlotAt finds the doctor's slot at an exact wall-clock time. The
	// (doctor, time) pair is unique, so there is at most one.
	SlotAt(ctx context.Context, doctorID string, t time.Time) (*models.Slot, error)
	// ListSlots returns a doctor's open slots, earliest first.
	ListSlots(ctx context.Context, doctorID string) ([]models.Slot, error)
	// ConsumeSlot removes the slot in one conditional delete. At most one
	// caller gets it back; every other caller sees models.ErrSlotUnavailable.
	ConsumeSlot(ctx context.Context, id string) (*models.Slot, error)
	// DeleteSlot is idempotent.
	DeleteSlot(ctx context.Context, id string) error
}

type Appointments interface {
	// BookSlot consumes the slot owned by a.DoctorID and inserts a in one
	// transaction. a.DateTime is taken from the consumed slot. When the slot
	// is gone nothing is written and models.ErrSlotUnavailable is returned.
	BookSlot(ctx context.Context, slotID string, a *models.Appointment) error
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]models.AppointmentView, error)
	// TransitionStatus moves an appointment from one status to another only
	// if it is still in from.
	TransitionStatus(ctx context.Context, id string, from, to models.Status) error
}

type Reports interface {
	CreateReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	ListReports(ctx context.Context) ([]models.Report, error)
	DeleteReport(ctx context.Context, id string) error
}

type Store interface {
	Users
	Slots
	Appointments
	Reports
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
