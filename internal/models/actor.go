package models

import "fmt"

// Actor is the authenticated caller of a workflow operation. The set of
// implementations is closed: Admin, Doctor, Receptionist and Patient.
type Actor interface {
	ActorID() string
	ActorRole() Role
	sealed()
}

type Admin struct{ ID string }

type Doctor struct{ ID string }

type Receptionist struct{ ID string }

type Patient struct{ ID string }

func (a Admin) ActorID() string        { return a.ID }
func (a Doctor) ActorID() string       { return a.ID }
func (a Receptionist) ActorID() string { return a.ID }
func (a Patient) ActorID() string      { return a.ID }

func (Admin) ActorRole() Role        { return RoleAdmin }
func (Doctor) ActorRole() Role       { return RoleDoctor }
func (Receptionist) ActorRole() Role { return RoleReceptionist }
func (Patient) ActorRole() Role      { return RolePatient }

func (Admin) sealed()        {}
func (Doctor) sealed()       {}
func (Receptionist) sealed() {}
func (Patient) sealed()      {}

// NewActor builds the variant matching role.
func NewActor(id string, role Role) (Actor, error) {
	switch role {
	case RoleAdmin:
		return Admin{ID: id}, nil
	case RoleDoctor:
		return Doctor{ID: id}, nil
	case RoleReceptionist:
		return Receptionist{ID: id}, nil
	case RolePatient:
		return Patient{ID: id}, nil
	}
	return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
}

// IsFrontDesk reports whether a may act on behalf of the clinic desk.
func IsFrontDesk(a Actor) bool {
	switch a.(type) {
	case Admin, Receptionist:
		return true
	}
	return false
}
