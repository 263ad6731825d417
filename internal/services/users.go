package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLen = 8

type UserService struct {
	store  store.Users
	secret []byte
	ttl    time.Duration
}

func NewUserService(st store.Users, secret []byte, ttl time.Duration) *UserService {
	return &UserService{store: st, secret: secret, ttl: ttl}
}

type NewUser struct {
	Email     string
	Password  string
	Role      models.Role
	FirstName string
	LastName  string
	Phone     string
	Specialty string
}

// Register is public self sign-up and always creates a patient.
func (s *UserService) Register(ctx context.Context, in NewUser) (*models.User, error) {
	in.Role = models.RolePatient
	in.Specialty = ""
	return s.create(ctx, in)
}

// Create lets staff open accounts. Admins may create any role, receptionists
// only patients.
func (s *UserService) Create(ctx context.Context, actor models.Actor, in NewUser) (*models.User, error) {
	switch actor.(type) {
	case models.Admin:
	case models.Receptionist:
		if in.Role != models.RolePatient {
			return nil, fmt.Errorf("%w: receptionists create patient accounts only", models.ErrForbidden)
		}
	case models.Doctor, models.Patient:
		return nil, fmt.Errorf("%w: %s cannot create accounts", models.ErrForbidden, actor.ActorRole())
	}
	return s.create(ctx, in)
}

func (s *UserService) create(ctx context.Context, in NewUser) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", models.ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", models.ErrValidation, minPasswordLen)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrValidation, in.Role)
	}
	if strings.TrimSpace(in.FirstName) == "" && strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: a name is required", models.ErrValidation)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
	}
	if in.Role == models.RoleDoctor {
		u.Specialty = strings.TrimSpace(in.Specialty)
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: an account with this email already exists", models.ErrConflict)
		}
		return nil, err
	}
	log.Printf("[users] created %s %s", u.Role, u.ID)
	return u, nil
}

// Login checks the credentials and issues a token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := s.store.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !utils.CheckPasswordHash(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := utils.GenerateJWT(s.secret, u.ID, string(u.Role), s.ttl)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, u, nil
}

func (s *UserService) List(ctx context.Context, role models.Role) ([]models.User, error) {
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrValidation, role)
	}
	return s.store.ListUsers(ctx, role)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.UserByID(ctx, id)
}

// UpdateProfile changes names and phone. The role never changes.
func (s *UserService) UpdateProfile(ctx context.Context, actor models.Actor, id string, p models.Profile) (*models.User, error) {
	if _, ok := actor.(models.Admin); !ok && actor.ActorID() != id {
		return nil, fmt.Errorf("%w: cannot edit another user's profile", models.ErrForbidden)
	}
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.FirstName == "" && p.LastName == "" {
		return nil, fmt.Errorf("%w: a name is required", models.ErrValidation)
	}
	if err := s.store.UpdateProfile(ctx, id, p); err != nil {
		return nil, err
	}
	return s.store.UserByID(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, ok := actor.(models.Admin); !ok {
		return fmt.Errorf("%w: only admins delete users", models.ErrForbidden)
	}
	if actor.ActorID() == id {
		return fmt.Errorf("%w: admins cannot delete themselves", models.ErrValidation)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	log.Printf("[users] deleted %s", id)
	return nil
}

// EnsureAdmin creates the admin account or resets its password when the
// email is already registered. It reports whether a new account was made.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	existing, err := s.store.UserByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, models.ErrNotFound):
		_, err := s.create(ctx, NewUser{
			Email:     email,
			Password:  password,
			Role:      models.RoleAdmin,
			FirstName: "System",
			LastName:  "Admin",
		})
		return err == nil, err
	case err != nil:
		return false, err
	}
	if existing.Role != models.RoleAdmin {
		return false, fmt.Errorf("%w: %s belongs to a %s account", models.ErrConflict, email, existing.Role)
	}
	if len(password) < minPasswordLen {
		return false, fmt.Errorf("%w: password must be at least %d characters", models.ErrValidation, minPasswordLen)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	return false, s.store.UpdatePassword(ctx, existing.ID, hash)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
