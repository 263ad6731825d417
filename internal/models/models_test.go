package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-api/internal/models"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to models.Status
		ok       bool
	}{
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusPending, models.StatusDeclined, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusConfirmed, models.StatusCancelled, true},
		{models.StatusPending, models.StatusPending, false},
		{models.StatusConfirmed, models.StatusConfirmed, false},
		{models.StatusConfirmed, models.StatusDeclined, false},
		{models.StatusConfirmed, models.StatusPending, false},
		{models.StatusDeclined, models.StatusConfirmed, false},
		{models.StatusDeclined, models.StatusCancelled, false},
		{models.StatusCancelled, models.StatusConfirmed, false},
		{models.StatusCancelled, models.StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, models.StatusPending.Terminal())
	assert.False(t, models.StatusConfirmed.Terminal())
	assert.True(t, models.StatusDeclined.Terminal())
	assert.True(t, models.StatusCancelled.Terminal())
}

func TestParseDateTimeKeepsWallClock(t *testing.T) {
	// a process zone far from UTC must not shift the parsed clock
	prev := time.Local
	time.Local = time.FixedZone("UTC+5:30", 5*3600+1800)
	t.Cleanup(func() { time.Local = prev })

	got, err := models.ParseDateTime("2024-09-01 10:00:00")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.September, got.Month())
	assert.Equal(t, 1, got.Day())
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 0, got.Minute())
	assert.Equal(t, "2024-09-01 10:00:00", models.FormatDateTime(got))
}

func TestParseDateTimeFormats(t *testing.T) {
	for _, in := range []string{"2024-09-01 10:00:00", "2024-09-01T10:00:00", "2024-09-01T10:00", " 2024-09-01 10:00:00 "} {
		got, err := models.ParseDateTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2024-09-01 10:00:00", models.FormatDateTime(got), in)
	}

	for _, in := range []string{"", "yesterday", "2024-13-01 10:00:00", "01/09/2024 10:00"} {
		_, err := models.ParseDateTime(in)
		assert.ErrorIs(t, err, models.ErrValidation, in)
	}
}

func TestWallNowUsesClinicZone(t *testing.T) {
	now := time.Date(2024, 9, 1, 23, 30, 0, 0, time.UTC)
	loc := time.FixedZone("UTC+2", 2*3600)
	assert.Equal(t, "2024-09-02 01:30:00", models.FormatDateTime(models.WallNow(now, loc)))
}

func TestNewActor(t *testing.T) {
	a, err := models.NewActor("d1", models.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, models.Doctor{ID: "d1"}, a)
	assert.False(t, models.IsFrontDesk(a))

	a, err = models.NewActor("r1", models.RoleReceptionist)
	require.NoError(t, err)
	assert.True(t, models.IsFrontDesk(a))

	_, err = models.NewActor("x", models.Role("nurse"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Kamal Perera", (&models.User{FirstName: "Kamal", LastName: "Perera"}).FullName())
	assert.Equal(t, "Perera", (&models.User{LastName: "Perera"}).FullName())
}
