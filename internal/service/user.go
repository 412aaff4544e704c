package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkghash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req transport.UpdateProfileRequest) (*models.User, error) {
	u, err := s.Repo.UpdateUser(ctx, userID, repo.UserPatch{Name: req.Name, Email: req.Email})
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	return u, fromRepo(err, "user")
}

func (s *UserService) List(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	return s.Repo.ListUsers(ctx, offset, limit)
}

// Create lets an admin add accounts of either role.
func (s *UserService) Create(ctx context.Context, req transport.AdminCreateUserRequest) (*models.User, error) {
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	pwHash, err := pkghash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}
	logging.FromContext(ctx).Info("user_created_by_admin", "user_id", u.ID, "role", role)
	return u, nil
}

// SetActive disables or enables an account. Disabling revokes its sessions.
func (s *UserService) SetActive(ctx context.Context, actorID, userID uint, active bool) (*models.User, error) {
	if actorID == userID && !active {
		return nil, fmt.Errorf("%w: cannot disable your own account", ErrValidation)
	}
	u, err := s.Repo.SetUserActive(ctx, userID, active, time.Now().UTC())
	return u, fromRepo(err, "user")
}

// EnsureAdmin creates the bootstrap admin when the email is not taken yet.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.Create(ctx, transport.AdminCreateUserRequest{Name: "admin", Email: email, Password: password, Role: models.RoleAdmin})
	if errors.Is(err, ErrConflict) {
		return nil
	}
	return err
}
