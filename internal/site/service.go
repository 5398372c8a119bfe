package site

import (
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/rental-management/internal"
)

// Repository defines the data access methods for sites
type Repository interface {
	GetAll() ([]*Site, error)
	GetByName(name string) (*Site, error)
	Create(s *Site) error
	DeleteByNames(names []string) (int, error)
}

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

func (s *Service) ListSites() ([]*Site, error) {
	sites, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list sites", "error", err)
		return nil, err
	}
	return sites, nil
}

func (s *Service) AddSite(name string) (*Site, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationFieldError("name", "name is required", errors.ErrCodeValidationFailed)
	}

	existing, err := s.repo.GetByName(name)
	if err != nil && err != ErrSiteNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSiteExists
	}

	site := &Site{Name: name, CreatedAt: time.Now()}
	if err := s.repo.Create(site); err != nil {
		s.logger.Error("failed to create site", "error", err, "name", name)
		return nil, err
	}

	s.logger.Info("site added", "name", name)
	return site, nil
}

// EnsureSite registers name if unseen. Called by rental registration,
// so an unknown site never blocks a loan.
func (s *Service) EnsureSite(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.NewValidationFieldError("site", "site is required", errors.ErrCodeValidationFailed)
	}

	existing, err := s.repo.GetByName(name)
	if err != nil && err != ErrSiteNotFound {
		return err
	}
	if existing != nil {
		return nil
	}

	if err := s.repo.Create(&Site{Name: name, CreatedAt: time.Now()}); err != nil {
		s.logger.Error("failed to auto-create site", "error", err, "name", name)
		return err
	}

	s.logger.Info("site auto-created from rental", "name", name)
	return nil
}

func (s *Service) DeleteSites(names []string) (int, error) {
	if len(names) == 0 {
		return 0, errors.NewValidationError("names must not be empty", errors.ErrCodeValidationFailed)
	}

	deleted, err := s.repo.DeleteByNames(names)
	if err != nil {
		s.logger.Error("failed to delete sites", "error", err, "names", names)
		return 0, err
	}

	s.logger.Info("sites deleted", "requested", len(names), "deleted", deleted)
	return deleted, nil
}
