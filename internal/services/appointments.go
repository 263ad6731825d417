package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

// Workflow owns the appointment lifecycle. Every state change is committed
// before its notification is handed to the dispatcher.
type Workflow struct {
	store  store.Store
	notify Dispatcher
}

func NewWorkflow(st store.Store, d Dispatcher) *Workflow {
	return &Workflow{store: st, notify: d}
}

type BookRequest struct {
	PatientID string
	DoctorID  string
	// SlotID may be empty when Expected is set; the slot is then the
	// doctor's slot at that time.
	SlotID string
	// Expected, when set, must match the slot time.
	Expected time.Time
}

// Book consumes the slot and creates a Pending appointment in one store
// transaction.
func (w *Workflow) Book(ctx context.Context, actor models.Actor, req BookRequest) (_ *models.Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointments.Book")
	span.SetAttributes(attribute.String("doctor.id", req.DoctorID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(req.PatientID) == "" || strings.TrimSpace(req.DoctorID) == "" {
		return nil, fmt.Errorf("%w: patientId and doctorId are required", models.ErrValidation)
	}
	if strings.TrimSpace(req.SlotID) == "" && req.Expected.IsZero() {
		return nil, fmt.Errorf("%w: slotId or date is required", models.ErrValidation)
	}
	if err := canBook(actor, req.PatientID); err != nil {
		return nil, err
	}

	patient, err := w.userWithRole(ctx, req.PatientID, models.RolePatient)
	if err != nil {
		return nil, err
	}
	doctor, err := w.userWithRole(ctx, req.DoctorID, models.RoleDoctor)
	if err != nil {
		return nil, err
	}

	sl, err := w.findSlot(ctx, req)
	if err != nil {
		return nil, err
	}
	req.SlotID = sl.ID
	span.SetAttributes(attribute.String("slot.id", sl.ID))
	if sl.DoctorID != req.DoctorID {
		return nil, fmt.Errorf("%w: slot %s belongs to another doctor", models.ErrValidation, req.SlotID)
	}
	if !req.Expected.IsZero() && !models.Wall(req.Expected).Equal(models.Wall(sl.DateTime)) {
		return nil, fmt.Errorf("%w: slot %s is at %s, not %s", models.ErrValidation,
			req.SlotID, models.FormatDateTime(sl.DateTime), models.FormatDateTime(req.Expected))
	}

	a := &models.Appointment{
		ID:          uuid.NewString(),
		PatientID:   patient.ID,
		DoctorID:    doctor.ID,
		PatientName: patient.FullName(),
		DoctorName:  doctor.FullName(),
		Status:      models.StatusPending,
	}
	if err := w.store.BookSlot(ctx, req.SlotID, a); err != nil {
		if errors.Is(err, models.ErrSlotUnavailable) {
			log.Printf("[booking] slot %s lost to a concurrent booking", req.SlotID)
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("appointment.id", a.ID))
	log.Printf("[booking] appointment=%s patient=%s doctor=%s at %s", a.ID, a.PatientID, a.DoctorID, models.FormatDateTime(a.DateTime))

	w.dispatch(ctx, KindSubmitted, a, patient.Phone)
	return a, nil
}

func (w *Workflow) findSlot(ctx context.Context, req BookRequest) (*models.Slot, error) {
	if req.SlotID == "" {
		sl, err := w.store.SlotAt(ctx, req.DoctorID, req.Expected)
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: no slot for doctor %s at %s", models.ErrSlotUnavailable,
				req.DoctorID, models.FormatDateTime(req.Expected))
		}
		return sl, err
	}
	sl, err := w.store.GetSlot(ctx, req.SlotID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: slot %s", models.ErrSlotUnavailable, req.SlotID)
	}
	return sl, err
}

// SetStatus moves an appointment along the state machine. A doctor may
// confirm or decline their own appointments; the front desk may cancel.
func (w *Workflow) SetStatus(ctx context.Context, actor models.Actor, id string, to models.Status) (_ *models.Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointments.SetStatus")
	span.SetAttributes(attribute.String("appointment.id", id), attribute.String("status.to", string(to)))
	defer func() { endSpan(span, err) }()

	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, to)
	}
	a, err := w.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if to == models.StatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, a.Status, to)
	}
	if err := canSetStatus(actor, a, to); err != nil {
		return nil, err
	}
	if !a.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, a.Status, to)
	}
	if err := w.store.TransitionStatus(ctx, id, a.Status, to); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: appointment %s changed concurrently", err, id)
		}
		return nil, err
	}
	from := a.Status
	a.Status = to
	log.Printf("[booking] appointment=%s %s -> %s by %s %s", id, from, to, actor.ActorRole(), actor.ActorID())

	phone := ""
	if p, err := w.store.UserByID(ctx, a.PatientID); err == nil {
		phone = p.Phone
	} else {
		log.Printf("[notify] patient %s lookup for appointment=%s: %v", a.PatientID, id, err)
	}
	w.dispatch(ctx, kindFor(to), a, phone)
	return a, nil
}

func (w *Workflow) ListForDoctor(ctx context.Context, doctorID string, order models.SortOrder) ([]models.AppointmentView, error) {
	return w.store.ListAppointments(ctx, models.AppointmentFilter{DoctorID: doctorID, Order: order})
}

func (w *Workflow) ListForPatient(ctx context.Context, patientID string, order models.SortOrder) ([]models.AppointmentView, error) {
	return w.store.ListAppointments(ctx, models.AppointmentFilter{PatientID: patientID, Order: order})
}

func (w *Workflow) ListAll(ctx context.Context, order models.SortOrder) ([]models.AppointmentView, error) {
	return w.store.ListAppointments(ctx, models.AppointmentFilter{Order: order})
}

// ListQuery is the dashboard listing request. UserID and Role are honored
// only for the front desk; doctors and patients always see their own.
type ListQuery struct {
	UserID string
	Role   models.Role
	Order  models.SortOrder
}

func (w *Workflow) ListVisible(ctx context.Context, actor models.Actor, q ListQuery) ([]models.AppointmentView, error) {
	switch a := actor.(type) {
	case models.Doctor:
		return w.ListForDoctor(ctx, a.ID, q.Order)
	case models.Patient:
		return w.ListForPatient(ctx, a.ID, q.Order)
	case models.Admin, models.Receptionist:
		switch {
		case q.UserID == "":
			return w.ListAll(ctx, q.Order)
		case q.Role == models.RoleDoctor:
			return w.ListForDoctor(ctx, q.UserID, q.Order)
		case q.Role == models.RolePatient:
			return w.ListForPatient(ctx, q.UserID, q.Order)
		}
		return w.ListAll(ctx, q.Order)
	}
	return nil, models.ErrForbidden
}

func (w *Workflow) dispatch(ctx context.Context, kind string, a *models.Appointment, phone string) {
	if phone == "" {
		log.Printf("[notify] skip kind=%s appointment=%s: patient has no phone", kind, a.ID)
		return
	}
	w.notify.Dispatch(ctx, models.Notification{
		AppointmentID: a.ID,
		Kind:          kind,
		To:            phone,
		Message:       NotificationText(kind, a),
	})
}

func (w *Workflow) userWithRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	u, err := w.store.UserByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s %s", models.ErrNotFound, role, id)
	}
	if err != nil {
		return nil, err
	}
	if u.Role != role {
		return nil, fmt.Errorf("%w: user %s is not a %s", models.ErrValidation, id, role)
	}
	return u, nil
}

func kindFor(s models.Status) string {
	switch s {
	case models.StatusConfirmed:
		return KindConfirmed
	case models.StatusDeclined:
		return KindDeclined
	case models.StatusCancelled:
		return KindCancelled
	}
	return strings.ToLower(string(s))
}

// canBook lets patients book for themselves and the front desk book for
// anyone.
func canBook(actor models.Actor, patientID string) error {
	switch a := actor.(type) {
	case models.Patient:
		if a.ID == patientID {
			return nil
		}
		return fmt.Errorf("%w: patients book only for themselves", models.ErrForbidden)
	case models.Admin, models.Receptionist:
		return nil
	case models.Doctor:
	}
	return fmt.Errorf("%w: %s cannot book appointments", models.ErrForbidden, actor.ActorRole())
}

func canSetStatus(actor models.Actor, a *models.Appointment, to models.Status) error {
	switch act := actor.(type) {
	case models.Doctor:
		if act.ID != a.DoctorID {
			return fmt.Errorf("%w: appointment %s belongs to another doctor", models.ErrForbidden, a.ID)
		}
		if to == models.StatusConfirmed || to == models.StatusDeclined {
			return nil
		}
	case models.Admin, models.Receptionist:
		if to == models.StatusCancelled {
			return nil
		}
	case models.Patient:
	}
	return fmt.Errorf("%w: %s cannot set status %s", models.ErrForbidden, actor.ActorRole(), to)
}
