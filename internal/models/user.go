package models

import "time"

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RolePatient      Role = "patient"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient:
		return true
	}
	return false
}

// User is an account of any role. Specialty is only meaningful for doctors.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	FirstName    string    `bson:"first_name" json:"first_name"`
	LastName     string    `bson:"last_name" json:"last_name"`
	Phone        string    `bson:"phone" json:"phone"`
	Specialty    string    `bson:"specialty,omitempty" json:"specialty,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Profile holds the fields a user may change after registration.
type Profile struct {
	FirstName string
	LastName  string
	Phone     string
}
