package models

import "time"

// Slot is an open, bookable time offered by one doctor. Its existence is
// its availability: booking deletes it.
type Slot struct {
	ID        string    `bson:"_id"`
	DoctorID  string    `bson:"doctor_id"`
	DateTime  time.Time `bson:"date_time"`
	CreatedAt time.Time `bson:"created_at"`
}
