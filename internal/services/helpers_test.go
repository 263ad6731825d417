package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store/memstore"
)

type sent struct {
	To, Message string
}

// fakeNotifier fails the first failures sends, then records the rest.
type fakeNotifier struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []sent
}

func (f *fakeNotifier) Send(_ context.Context, to, message string) (Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return Receipt{}, errors.New("provider down")
	}
	f.sent = append(f.sent, sent{To: to, Message: message})
	return Receipt{Provider: "fake"}, nil
}

func (f *fakeNotifier) messages() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sent...)
}

type fixture struct {
	store    *memstore.Store
	notifier *fakeNotifier
	dispatch *DirectDispatcher
	workflow *Workflow
	slots    *SlotService

	doctor, otherDoctor, patient, receptionist, admin *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	n := &fakeNotifier{}
	d := NewDirectDispatcher(n, 3, 0)
	f := &fixture{
		store:    st,
		notifier: n,
		dispatch: d,
		workflow: NewWorkflow(st, d),
		slots:    NewSlotService(st, time.UTC),
	}
	f.slots.now = func() time.Time { return time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC) }

	f.doctor = addUser(t, st, "d1", models.RoleDoctor, "Amal", "Silva", "")
	f.otherDoctor = addUser(t, st, "d2", models.RoleDoctor, "Nimal", "Fernando", "")
	f.patient = addUser(t, st, "p1", models.RolePatient, "Kamal", "Perera", "+94770000001")
	f.receptionist = addUser(t, st, "r1", models.RoleReceptionist, "Rita", "Desk", "")
	f.admin = addUser(t, st, "a1", models.RoleAdmin, "System", "Admin", "")
	return f
}

func addUser(t *testing.T, st *memstore.Store, id string, role models.Role, first, last, phone string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Email: id + "@clinic.test", Role: role, FirstName: first, LastName: last, Phone: phone}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) addSlot(t *testing.T, id, doctorID, at string) *models.Slot {
	t.Helper()
	ts, err := models.ParseDateTime(at)
	require.NoError(t, err)
	sl := &models.Slot{ID: id, DoctorID: doctorID, DateTime: ts}
	require.NoError(t, f.store.AddSlot(context.Background(), sl))
	return sl
}
