package location

import (
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/rental-management/internal"
)

// Repository defines the data access methods for locations
type Repository interface {
	GetAll() ([]*Location, error)
	GetByName(name string) (*Location, error)
	Create(l *Location) error
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

func (s *Service) ListLocations() ([]*Location, error) {
	locations, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list locations", "error", err)
		return nil, err
	}
	return locations, nil
}

func (s *Service) AddLocation(name string) (*Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationFieldError("name", "name is required", errors.ErrCodeValidationFailed)
	}

	existing, err := s.repo.GetByName(name)
	if err != nil && err != ErrLocationNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLocationExists
	}

	loc := &Location{Name: name, CreatedAt: time.Now()}
	if err := s.repo.Create(loc); err != nil {
		s.logger.Error("failed to create location", "error", err, "name", name)
		return nil, err
	}

	s.logger.Info("location added", "name", name)
	return loc, nil
}

func (s *Service) DeleteLocations(names []string) (int, error) {
	if len(names) == 0 {
		return 0, errors.NewValidationError("names must not be empty", errors.ErrCodeValidationFailed)
	}

	deleted, err := s.repo.DeleteByNames(names)
	if err != nil {
		s.logger.Error("failed to delete locations", "error", err, "names", names)
		return 0, err
	}

	s.logger.Info("locations deleted", "requested", len(names), "deleted", deleted)
	return deleted, nil
}
