// Package memstore keeps everything in process memory. It backs local
// development (STORE_DRIVER=memory) and the service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu           sync.Mutex
	users        map[string]models.User
	slots        map[string]models.Slot
	appointments map[string]models.Appointment
	reports      map[string]models.Report
}

func New() *Store {
	return &Store{
		users:        make(map[string]models.User),
		slots:        make(map[string]models.Slot),
		appointments: make(map[string]models.Appointment),
		reports:      make(map[string]models.Report),
	}
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

// ----- users -----

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.ErrConflict
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, u := range s.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateProfile(_ context.Context, id string, p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.FirstName, u.LastName, u.Phone = p.FirstName, p.LastName, p.Phone
	s.users[id] = u
	return nil
}

func (s *Store) UpdatePassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.users, id)
	for sid, sl := range s.slots {
		if sl.DoctorID == id {
			delete(s.slots, sid)
		}
	}
	return nil
}

// ----- slots -----

func (s *Store) AddSlot(_ context.Context, sl *models.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.slots {
		if existing.DoctorID == sl.DoctorID && existing.DateTime.Equal(sl.DateTime) {
			return models.ErrConflict
		}
	}
	if sl.CreatedAt.IsZero() {
		sl.CreatedAt = time.Now().UTC()
	}
	s.slots[sl.ID] = *sl
	return nil
}

func (s *Store) GetSlot(_ context.Context, id string) (*models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &sl, nil
}

func (s *Store) SlotAt(_ context.Context, doctorID string, t time.Time) (*models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at := models.Wall(t)
	for _, sl := range s.slots {
		if sl.DoctorID == doctorID && models.Wall(sl.DateTime).Equal(at) {
			return &sl, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) ListSlots(_ context.Context, doctorID string) ([]models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Slot{}
	for _, sl := range s.slots {
		if sl.DoctorID == doctorID {
			out = append(out, sl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}

func (s *Store) ConsumeSlot(_ context.Context, id string) (*models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		return nil, models.ErrSlotUnavailable
	}
	delete(s.slots, id)
	return &sl, nil
}

func (s *Store) DeleteSlot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, id)
	return nil
}

// ----- appointments -----

func (s *Store) BookSlot(ctx context.Context, slotID string, a *models.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[slotID]
	if !ok || sl.DoctorID != a.DoctorID {
		return models.ErrSlotUnavailable
	}
	delete(s.slots, slotID)

	now := time.Now().UTC()
	a.DateTime = sl.DateTime
	a.CreatedAt, a.UpdatedAt = now, now
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (s *Store) ListAppointments(_ context.Context, f models.AppointmentFilter) ([]models.AppointmentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.AppointmentView{}
	for _, a := range s.appointments {
		if f.DoctorID != "" && a.DoctorID != f.DoctorID {
			continue
		}
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		out = append(out, models.AppointmentView{Appointment: a, PatientPhone: s.users[a.PatientID].Phone})
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].DateTime, out[j].DateTime
		if ti.Equal(tj) {
			return out[i].ID < out[j].ID
		}
		if f.Order == models.Ascending {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})
	return out, nil
}

func (s *Store) TransitionStatus(_ context.Context, id string, from, to models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return models.ErrNotFound
	}
	if a.Status != from {
		return models.ErrInvalidTransition
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	s.appointments[id] = a
	return nil
}

// ----- reports -----

func (s *Store) CreateReport(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.reports[r.ID] = *r
	return nil
}

func (s *Store) GetReport(_ context.Context, id string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (s *Store) ListReports(_ context.Context) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Report{}
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteReport(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}
