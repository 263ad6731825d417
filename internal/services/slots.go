package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

type SlotService struct {
	store store.Store
	loc   *time.Location
	now   func() time.Time
}

// NewSlotService checks new slots against the current wall-clock time in loc.
func NewSlotService(st store.Store, loc *time.Location) *SlotService {
	return &SlotService{store: st, loc: loc, now: time.Now}
}

func (s *SlotService) AddSlot(ctx context.Context, actor models.Actor, doctorID, dateTime string) (_ *models.Slot, err error) {
	ctx, span := tracer.Start(ctx, "slots.Add")
	span.SetAttributes(attribute.String("doctor.id", doctorID))
	defer func() { endSpan(span, err) }()

	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" || strings.TrimSpace(dateTime) == "" {
		return nil, fmt.Errorf("%w: doctorId and dateTime are required", models.ErrValidation)
	}
	if err := canManageSlots(actor, doctorID); err != nil {
		return nil, err
	}
	at, err := models.ParseDateTime(dateTime)
	if err != nil {
		return nil, err
	}
	if !at.After(models.WallNow(s.now(), s.loc)) {
		return nil, fmt.Errorf("%w: slot %s is in the past", models.ErrValidation, models.FormatDateTime(at))
	}
	if _, err := s.doctor(ctx, doctorID); err != nil {
		return nil, err
	}

	sl := &models.Slot{ID: uuid.NewString(), DoctorID: doctorID, DateTime: at}
	if err := s.store.AddSlot(ctx, sl); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: slot %s already offered", models.ErrConflict, models.FormatDateTime(at))
		}
		return nil, err
	}
	return sl, nil
}

func (s *SlotService) ListSlots(ctx context.Context, doctorID string) ([]models.Slot, error) {
	if strings.TrimSpace(doctorID) == "" {
		return nil, fmt.Errorf("%w: doctorId is required", models.ErrValidation)
	}
	return s.store.ListSlots(ctx, doctorID)
}

// DeleteSlot withdraws a slot. A slot that is already gone is not an error.
func (s *SlotService) DeleteSlot(ctx context.Context, actor models.Actor, id string) error {
	sl, err := s.store.GetSlot(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := canManageSlots(actor, sl.DoctorID); err != nil {
		return err
	}
	return s.store.DeleteSlot(ctx, id)
}

func (s *SlotService) doctor(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.UserByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: doctor %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleDoctor {
		return nil, fmt.Errorf("%w: user %s is not a doctor", models.ErrValidation, id)
	}
	return u, nil
}

// canManageSlots lets a doctor manage their own slots and an admin manage
// anyone's.
func canManageSlots(actor models.Actor, doctorID string) error {
	switch a := actor.(type) {
	case models.Doctor:
		if a.ID == doctorID {
			return nil
		}
	case models.Admin:
		return nil
	case models.Receptionist, models.Patient:
	}
	return fmt.Errorf("%w: cannot manage slots of doctor %s", models.ErrForbidden, doctorID)
}
