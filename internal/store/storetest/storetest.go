// Package storetest holds the behavior every store.Store backend must share.
// Backend test files call Run with a freshly opened store.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

// Run exercises st. Ids are random so a shared database can be reused
// across runs.
func Run(t *testing.T, st store.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, st) })
	t.Run("Slots", func(t *testing.T) { testSlots(t, st) })
	t.Run("ConcurrentConsume", func(t *testing.T) { testConcurrentConsume(t, st) })
	t.Run("BookSlot", func(t *testing.T) { testBookSlot(t, st) })
	t.Run("TransitionStatus", func(t *testing.T) { testTransition(t, st) })
	t.Run("Reports", func(t *testing.T) { testReports(t, st) })
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := models.ParseDateTime(s)
	require.NoError(t, err)
	return ts
}

func newUser(t *testing.T, st store.Store, role models.Role, phone string) *models.User {
	t.Helper()
	id := uuid.NewString()
	u := &models.User{
		ID:           id,
		Email:        id + "@clinic.test",
		PasswordHash: "x",
		Role:         role,
		FirstName:    "Test",
		LastName:     string(role),
		Phone:        phone,
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func testUsers(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := newUser(t, st, models.RoleDoctor, "+1")

	dup := *u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, st.CreateUser(ctx, &dup), models.ErrConflict)

	got, err := st.UserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, models.RoleDoctor, got.Role)

	require.NoError(t, st.UpdateProfile(ctx, u.ID, models.Profile{FirstName: "New", LastName: "Name", Phone: "+2"}))
	require.NoError(t, st.UpdatePassword(ctx, u.ID, "y"))
	got, err = st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.FullName())
	assert.Equal(t, "+2", got.Phone)
	assert.Equal(t, "y", got.PasswordHash)

	docs, err := st.ListUsers(ctx, models.RoleDoctor)
	require.NoError(t, err)
	found := false
	for _, d := range docs {
		assert.Equal(t, models.RoleDoctor, d.Role)
		found = found || d.ID == u.ID
	}
	assert.True(t, found)

	require.NoError(t, st.DeleteUser(ctx, u.ID))
	_, err = st.UserByID(ctx, u.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, st.DeleteUser(ctx, u.ID), models.ErrNotFound)
	assert.ErrorIs(t, st.UpdateProfile(ctx, u.ID, models.Profile{}), models.ErrNotFound)
}

func testSlots(t *testing.T, st store.Store) {
	ctx := context.Background()
	doc := newUser(t, st, models.RoleDoctor, "")

	for _, s := range []string{"2099-09-03 09:00:00", "2099-09-01 09:00:00", "2099-09-02 09:00:00"} {
		require.NoError(t, st.AddSlot(ctx, &models.Slot{ID: uuid.NewString(), DoctorID: doc.ID, DateTime: at(t, s)}))
	}
	err := st.AddSlot(ctx, &models.Slot{ID: uuid.NewString(), DoctorID: doc.ID, DateTime: at(t, "2099-09-01 09:00:00")})
	assert.ErrorIs(t, err, models.ErrConflict)

	slots, err := st.ListSlots(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "2099-09-01 09:00:00", models.FormatDateTime(slots[0].DateTime))
	assert.Equal(t, "2099-09-03 09:00:00", models.FormatDateTime(slots[2].DateTime))

	found, err := st.SlotAt(ctx, doc.ID, at(t, "2099-09-02 09:00:00"))
	require.NoError(t, err)
	assert.Equal(t, slots[1].ID, found.ID)
	_, err = st.SlotAt(ctx, doc.ID, at(t, "2099-09-02 10:00:00"))
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = st.SlotAt(ctx, uuid.NewString(), at(t, "2099-09-02 09:00:00"))
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := st.ConsumeSlot(ctx, slots[0].ID)
	require.NoError(t, err)
	assert.Equal(t, slots[0].ID, got.ID)
	_, err = st.ConsumeSlot(ctx, slots[0].ID)
	assert.ErrorIs(t, err, models.ErrSlotUnavailable)

	require.NoError(t, st.DeleteSlot(ctx, slots[1].ID))
	require.NoError(t, st.DeleteSlot(ctx, slots[1].ID))
	_, err = st.GetSlot(ctx, slots[1].ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	empty, err := st.ListSlots(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, st.DeleteUser(ctx, doc.ID))
	left, err := st.ListSlots(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, left, "slots go with their doctor")
}

func testConcurrentConsume(t *testing.T, st store.Store) {
	ctx := context.Background()
	doc := newUser(t, st, models.RoleDoctor, "")
	sl := &models.Slot{ID: uuid.NewString(), DoctorID: doc.ID, DateTime: at(t, "2099-10-01 10:00:00")}
	require.NoError(t, st.AddSlot(ctx, sl))

	const n = 8
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		wins        int
		unavailable int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.ConsumeSlot(ctx, sl.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, models.ErrSlotUnavailable):
				unavailable++
			default:
				t.Errorf("consume: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, unavailable)
}

func testBookSlot(t *testing.T, st store.Store) {
	ctx := context.Background()
	doc := newUser(t, st, models.RoleDoctor, "")
	other := newUser(t, st, models.RoleDoctor, "")
	pat := newUser(t, st, models.RolePatient, "+94770000001")
	sl := &models.Slot{ID: uuid.NewString(), DoctorID: doc.ID, DateTime: at(t, "2099-11-01 10:00:00")}
	require.NoError(t, st.AddSlot(ctx, sl))

	wrong := &models.Appointment{ID: uuid.NewString(), PatientID: pat.ID, DoctorID: other.ID, Status: models.StatusPending}
	assert.ErrorIs(t, st.BookSlot(ctx, sl.ID, wrong), models.ErrSlotUnavailable)
	_, err := st.GetAppointment(ctx, wrong.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	const n = 6
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a := &models.Appointment{
				ID: uuid.NewString(), PatientID: pat.ID, DoctorID: doc.ID,
				PatientName: "Test patient", DoctorName: "Test doctor", Status: models.StatusPending,
			}
			err := st.BookSlot(ctx, sl.ID, a)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				assert.Equal(t, "2099-11-01 10:00:00", models.FormatDateTime(a.DateTime))
				return
			}
			assert.ErrorIs(t, err, models.ErrSlotUnavailable)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	rows, err := st.ListAppointments(ctx, models.AppointmentFilter{DoctorID: doc.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "+94770000001", rows[0].PatientPhone)
	assert.Equal(t, models.StatusPending, rows[0].Status)

	slots, err := st.ListSlots(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, slots)

	// a cancelled context commits nothing and leaves the slot in place
	sl2 := &models.Slot{ID: uuid.NewString(), DoctorID: doc.ID, DateTime: at(t, "2099-11-02 10:00:00")}
	require.NoError(t, st.AddSlot(ctx, sl2))
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	a := &models.Appointment{ID: uuid.NewString(), PatientID: pat.ID, DoctorID: doc.ID, Status: models.StatusPending}
	assert.Error(t, st.BookSlot(cctx, sl2.ID, a))
	_, err = st.GetSlot(ctx, sl2.ID)
	assert.NoError(t, err)
	_, err = st.GetAppointment(ctx, a.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testTransition(t *testing.T, st store.Store) {
	ctx := context.Background()
	doc := newUser(t, st, models.RoleDoctor, "")
	pat := newUser(t, st, models.RolePatient, "")
	var ids []string
	for _, s := range []string{"2099-12-01 10:00:00", "2099-12-03 10:00:00", "2099-12-02 10:00:00"} {
		sl := &models.Slot{ID: uuid.NewString(), DoctorID: doc.ID, DateTime: at(t, s)}
		require.NoError(t, st.AddSlot(ctx, sl))
		a := &models.Appointment{ID: uuid.NewString(), PatientID: pat.ID, DoctorID: doc.ID, Status: models.StatusPending}
		require.NoError(t, st.BookSlot(ctx, sl.ID, a))
		ids = append(ids, a.ID)
	}

	require.NoError(t, st.TransitionStatus(ctx, ids[0], models.StatusPending, models.StatusConfirmed))
	assert.ErrorIs(t, st.TransitionStatus(ctx, ids[0], models.StatusPending, models.StatusDeclined), models.ErrInvalidTransition)
	assert.ErrorIs(t, st.TransitionStatus(ctx, uuid.NewString(), models.StatusPending, models.StatusConfirmed), models.ErrNotFound)

	got, err := st.GetAppointment(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	desc, err := st.ListAppointments(ctx, models.AppointmentFilter{PatientID: pat.ID})
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, "2099-12-03 10:00:00", models.FormatDateTime(desc[0].DateTime))

	asc, err := st.ListAppointments(ctx, models.AppointmentFilter{PatientID: pat.ID, Order: models.Ascending})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "2099-12-01 10:00:00", models.FormatDateTime(asc[0].DateTime))
}

func testReports(t *testing.T, st store.Store) {
	ctx := context.Background()
	r := &models.Report{ID: uuid.NewString(), Title: "Monthly", FilePath: "/uploads/x.pdf"}
	require.NoError(t, st.CreateReport(ctx, r))

	got, err := st.GetReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monthly", got.Title)

	list, err := st.ListReports(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	require.NoError(t, st.DeleteReport(ctx, r.ID))
	assert.ErrorIs(t, st.DeleteReport(ctx, r.ID), models.ErrNotFound)
}
