package user

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/rental-management/internal/identity"
)

// Repository defines the data access methods for users
type Repository interface {
	GetByEmail(email string) (*User, error)
	Create(u *User) error
	GetAll() ([]*User, error)
}

// Service resolves and provisions user records for asserted
// identities.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// EnsureUser returns the record for email, provisioning a new one
// with the lowest privilege on first sight.
func (s *Service) EnsureUser(email, displayName string) (*identity.User, error) {
	existing, err := s.repo.GetByEmail(email)
	if err == nil {
		return &identity.User{
			Email:       existing.Email,
			DisplayName: existing.DisplayName,
			Permission:  existing.Permission,
		}, nil
	}
	if err != ErrUserNotFound {
		return nil, err
	}

	now := time.Now()
	newUser := &User{
		Email:       email,
		DisplayName: displayName,
		Permission:  identity.PermissionViewer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(newUser); err != nil {
		return nil, err
	}

	s.logger.Info("provisioned new user", "email", email, "permission", newUser.Permission)

	return &identity.User{
		Email:       newUser.Email,
		DisplayName: newUser.DisplayName,
		Permission:  newUser.Permission,
	}, nil
}

func (s *Service) ListUsers() ([]*User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}
