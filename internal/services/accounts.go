package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"boarddash/internal/models"
	"boarddash/internal/policy"
	"boarddash/internal/store"
	"boarddash/internal/utils"
)

// ProfileInput is the self-service profile form. All three fields are required.
type ProfileInput struct {
	FirstName string `form:"first_name" validate:"required,max=150"`
	LastName  string `form:"last_name" validate:"required,max=150"`
	Email     string `form:"email" validate:"required,email,max=254"`
}

// NewUserInput describes an account created from the command line.
type NewUserInput struct {
	Username string `validate:"required,max=150"`
	Password string `validate:"required,min=8"`
	Email    string `validate:"omitempty,email,max=254"`
	IsStaff  bool
}

// AccountService covers login, profile edits and staff user management.
type AccountService struct {
	users store.UserRepository
	now   func() time.Time
}

func NewAccountService(s *store.Store) *AccountService {
	return &AccountService{users: s.Users, now: time.Now}
}

// Authenticate checks credentials and records the login time. Inactive
// accounts cannot log in.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPassword(u.Password, password) || !u.IsActive {
		return nil, ErrBadCredentials
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	u.LastLogin = &now
	return u, nil
}

func (s *AccountService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AccountService) ListUsers(ctx context.Context, search string, page int) (store.Page[models.User], error) {
	return s.users.List(ctx, search, page, store.DefaultPageSize)
}

// ToggleStatus flips the target's active flag and returns the new value.
func (s *AccountService) ToggleStatus(ctx context.Context, actor *models.User, targetID uint) (bool, error) {
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return false, err
	}
	if d := policy.CanToggleStatus(actor, target); !d.Allowed {
		return target.IsActive, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	active := !target.IsActive
	if err := s.users.SetActive(ctx, target.ID, active); err != nil {
		return target.IsActive, fmt.Errorf("set active on user %d: %w", target.ID, err)
	}
	return active, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, u *models.User, in ProfileInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(&in); err != nil {
		return err
	}
	if err := s.users.UpdateProfile(ctx, u.ID, in.FirstName, in.LastName, in.Email); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	u.FirstName, u.LastName, u.Email = in.FirstName, in.LastName, in.Email
	return nil
}

// CreateUser registers an active account with a bcrypt-hashed password.
func (s *AccountService) CreateUser(ctx context.Context, in NewUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, &ValidationError{Fields: map[string]string{"Username": "A user with that username already exists."}}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		IsActive: true,
		IsStaff:  in.IsStaff,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
