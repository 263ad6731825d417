package models

import "time"

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusDeclined  Status = "Declined"
	StatusCancelled Status = "Cancelled"
)

// transitions lists every allowed move. Anything absent, including a
// status to itself, is rejected.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusDeclined, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Appointment ties one patient to one doctor at one time. Names are
// snapshotted at booking and never re-derived.
type Appointment struct {
	ID          string    `bson:"_id"`
	PatientID   string    `bson:"patient_id"`
	DoctorID    string    `bson:"doctor_id"`
	PatientName string    `bson:"patient_name"`
	DoctorName  string    `bson:"doctor_name"`
	DateTime    time.Time `bson:"date_time"`
	Status      Status    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// AppointmentView is a listing row joined with the patient's phone.
type AppointmentView struct {
	Appointment
	PatientPhone string
}

type SortOrder int

const (
	Descending SortOrder = iota
	Ascending
)

// AppointmentFilter narrows a listing. Empty ids match everything.
type AppointmentFilter struct {
	DoctorID  string
	PatientID string
	Order     SortOrder
}
