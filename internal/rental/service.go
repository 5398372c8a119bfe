package rental

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/rental-management/internal/core/dates"
	"github.com/frahmantamala/rental-management/internal/core/events"
	"github.com/google/uuid"
)

// Repository defines the data access methods for rentals
type Repository interface {
	Create(r *Rental) error
	GetByID(id string) (*Rental, error)
	ListActive() ([]*Rental, error)
	ListAll() ([]*Rental, error)
	ListActiveByEquipment(equipmentID int64) ([]*Rental, error)
	UpdatePeriod(id string, start, end dates.Date) error
	// MarkReturned sets status=returned and the return date in place.
	MarkReturned(id string, returnDate dates.Date) error
	// SplitReturn reduces the original's quantity and appends the
	// returned sibling as one transaction. The decrement runs first so
	// a crash between the steps understates reserved capacity rather
	// than overcommitting it.
	SplitReturn(originalID string, remainingQuantity int, sibling *Rental) error
	// Reactivate flips a returned record back to active, clearing the
	// return date.
	Reactivate(id string) error
	Delete(id string) error
}

// SiteRegistry auto-creates job sites referenced by new rentals.
type SiteRegistry interface {
	EnsureSite(name string) error
}

// Service owns the rental lifecycle: admission-checked registration,
// period edits, full and partial returns, and the compensating undo
// operations.
type Service struct {
	repo      Repository
	equipment EquipmentSource
	sites     SiteRegistry
	engine    *Engine
	bus       *events.EventBus
	logger    *slog.Logger
	locks     *equipmentLocks
}

func NewService(repo Repository, equipmentSource EquipmentSource, sites SiteRegistry, engine *Engine, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		equipment: equipmentSource,
		sites:     sites,
		engine:    engine,
		bus:       bus,
		logger:    logger,
		locks:     newEquipmentLocks(),
	}
}

// CanAdmit answers an availability query without mutating anything.
func (s *Service) CanAdmit(q AvailabilityQueryDTO) (bool, error) {
	if err := q.Validate(); err != nil {
		return false, err
	}
	return s.engine.CanAdmit(q.EquipmentID, q.StartDate, q.EndDate, q.Quantity, q.ExcludeRentalID)
}

// RegisterRental admits and appends a new reservation. The check and
// the append run under the equipment's lock so concurrent requests
// cannot jointly overcommit the last units.
func (s *Service) RegisterRental(dto RegisterRentalDTO, borrower string) (*Rental, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("rental validation failed", "error", err, "equipment_id", dto.EquipmentID)
		return nil, err
	}

	eq, err := s.equipment.GetByID(dto.EquipmentID)
	if err != nil {
		s.logger.Error("equipment not found for rental", "error", err, "equipment_id", dto.EquipmentID)
		return nil, err
	}

	lock := s.locks.forEquipment(dto.EquipmentID)
	lock.Lock()
	defer lock.Unlock()

	ok, err := s.engine.CanAdmit(dto.EquipmentID, dto.StartDate, dto.EndDate, dto.Quantity, "")
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("rental rejected by admission check",
			"equipment_id", dto.EquipmentID,
			"start", dto.StartDate.String(),
			"end", dto.EndDate.String(),
			"quantity", dto.Quantity)
		return nil, ErrCapacityExceeded
	}

	if err := s.sites.EnsureSite(dto.Site); err != nil {
		return nil, err
	}

	r := &Rental{
		ID:          uuid.NewString(),
		EquipmentID: dto.EquipmentID,
		// convenience copy for display; the equipment row stays authoritative
		EquipmentName:  eq.Name,
		Quantity:       dto.Quantity,
		StartDate:      dto.StartDate,
		EndDate:        dto.EndDate,
		Site:           dto.Site,
		Borrower:       borrower,
		SourceLocation: dto.SourceLocation,
		RegisteredAt:   time.Now(),
		Status:         StatusActive,
	}

	if err := s.repo.Create(r); err != nil {
		s.logger.Error("failed to create rental", "error", err, "equipment_id", dto.EquipmentID)
		return nil, err
	}

	s.bus.Publish(context.Background(), events.NewRentalRegisteredEvent(
		r.ID, r.EquipmentID, r.Quantity, r.Site, r.Borrower,
		r.StartDate.String(), r.EndDate.String()))

	s.logger.Info("rental registered",
		"rental_id", r.ID,
		"equipment_id", r.EquipmentID,
		"quantity", r.Quantity,
		"site", r.Site,
		"borrower", borrower)

	return r, nil
}

// UpdateRentalPeriod moves an existing reservation to a new date
// range, re-validated against capacity with the rental's own current
// allocation excluded from the accumulation.
func (s *Service) UpdateRentalPeriod(rentalID string, dto UpdatePeriodDTO) error {
	if err := dto.Validate(); err != nil {
		s.logger.Error("period validation failed", "error", err, "rental_id", rentalID)
		return err
	}

	r, err := s.repo.GetByID(rentalID)
	if err != nil {
		s.logger.Error("rental not found for period update", "error", err, "rental_id", rentalID)
		return ErrRentalNotFound
	}

	lock := s.locks.forEquipment(r.EquipmentID)
	lock.Lock()
	defer lock.Unlock()

	ok, err := s.engine.CanAdmit(r.EquipmentID, dto.StartDate, dto.EndDate, r.Quantity, r.ID)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("period update rejected by admission check",
			"rental_id", rentalID,
			"start", dto.StartDate.String(),
			"end", dto.EndDate.String())
		return ErrCapacityExceeded
	}

	if err := s.repo.UpdatePeriod(rentalID, dto.StartDate, dto.EndDate); err != nil {
		s.logger.Error("failed to update rental period", "error", err, "rental_id", rentalID)
		return err
	}

	s.bus.Publish(context.Background(), events.NewRentalPeriodUpdatedEvent(
		rentalID, dto.StartDate.String(), dto.EndDate.String()))

	s.logger.Info("rental period updated",
		"rental_id", rentalID,
		"start", dto.StartDate.String(),
		"end", dto.EndDate.String())

	return nil
}

// ReturnEquipment records a return. Returning the full quantity closes
// the record in place. Returning less splits it: the original keeps
// the remainder and stays active under its existing ID, and a new
// sibling record carries the returned share, so external references
// to the original keep resolving to what is still out.
func (s *Service) ReturnEquipment(rentalID string, dto ReturnDTO) error {
	if err := dto.Validate(); err != nil {
		s.logger.Error("return validation failed", "error", err, "rental_id", rentalID)
		return err
	}

	r, err := s.repo.GetByID(rentalID)
	if err != nil {
		s.logger.Error("rental not found for return", "error", err, "rental_id", rentalID)
		return ErrRentalNotFound
	}

	lock := s.locks.forEquipment(r.EquipmentID)
	lock.Lock()
	defer lock.Unlock()

	// re-read under the lock; a concurrent return may have advanced the record
	r, err = s.repo.GetByID(rentalID)
	if err != nil {
		return ErrRentalNotFound
	}

	if r.Status == StatusReturned {
		return ErrAlreadyReturned
	}
	if dto.Quantity > r.Quantity {
		s.logger.Warn("return quantity exceeds outstanding quantity",
			"rental_id", rentalID,
			"requested", dto.Quantity,
			"outstanding", r.Quantity)
		return ErrInvalidQuantity
	}

	if dto.Quantity == r.Quantity {
		if err := s.repo.MarkReturned(rentalID, dto.ReturnDate); err != nil {
			s.logger.Error("failed to mark rental returned", "error", err, "rental_id", rentalID)
			return err
		}

		s.bus.Publish(context.Background(), events.NewRentalReturnedEvent(
			rentalID, r.EquipmentID, dto.Quantity, dto.ReturnDate.String(), false, ""))

		s.logger.Info("rental fully returned",
			"rental_id", rentalID,
			"quantity", dto.Quantity,
			"return_date", dto.ReturnDate.String())
		return nil
	}

	returnDate := dto.ReturnDate
	sibling := &Rental{
		ID:             uuid.NewString(),
		EquipmentID:    r.EquipmentID,
		EquipmentName:  r.EquipmentName,
		Quantity:       dto.Quantity,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		Site:           r.Site,
		Borrower:       r.Borrower,
		SourceLocation: r.SourceLocation,
		RegisteredAt:   time.Now(),
		Status:         StatusReturned,
		ReturnDate:     &returnDate,
	}

	if err := s.repo.SplitReturn(rentalID, r.Quantity-dto.Quantity, sibling); err != nil {
		s.logger.Error("failed to split rental for partial return", "error", err, "rental_id", rentalID)
		return err
	}

	s.bus.Publish(context.Background(), events.NewRentalReturnedEvent(
		rentalID, r.EquipmentID, dto.Quantity, dto.ReturnDate.String(), true, sibling.ID))

	s.logger.Info("rental partially returned",
		"rental_id", rentalID,
		"returned_quantity", dto.Quantity,
		"remaining_quantity", r.Quantity-dto.Quantity,
		"sibling_rental_id", sibling.ID)

	return nil
}

// DeleteRental hard-deletes a record. Used to undo an accidental
// registration; removing a rental only frees capacity, so no
// admission check is needed.
func (s *Service) DeleteRental(rentalID string) error {
	if _, err := s.repo.GetByID(rentalID); err != nil {
		s.logger.Error("rental not found for delete", "error", err, "rental_id", rentalID)
		return ErrRentalNotFound
	}

	if err := s.repo.Delete(rentalID); err != nil {
		s.logger.Error("failed to delete rental", "error", err, "rental_id", rentalID)
		return err
	}

	s.logger.Info("rental deleted", "rental_id", rentalID)
	return nil
}

// UndoReturn flips a returned record back to active. It is a
// compensating action for user error, not a normal transition, and it
// does not re-merge a sibling created by a partial return: both
// records stay, keeping the audit trail append-only.
func (s *Service) UndoReturn(rentalID string) error {
	r, err := s.repo.GetByID(rentalID)
	if err != nil {
		s.logger.Error("rental not found for undo-return", "error", err, "rental_id", rentalID)
		return ErrRentalNotFound
	}

	if r.Status != StatusReturned {
		return ErrNotReturned
	}

	if err := s.repo.Reactivate(rentalID); err != nil {
		s.logger.Error("failed to reactivate rental", "error", err, "rental_id", rentalID)
		return err
	}

	s.logger.Info("rental return undone", "rental_id", rentalID)
	return nil
}

func (s *Service) GetRental(rentalID string) (*Rental, error) {
	r, err := s.repo.GetByID(rentalID)
	if err != nil {
		return nil, ErrRentalNotFound
	}
	return r, nil
}

func (s *Service) ListActiveRentals() ([]*Rental, error) {
	rentals, err := s.repo.ListActive()
	if err != nil {
		s.logger.Error("failed to list active rentals", "error", err)
		return nil, err
	}
	return rentals, nil
}

func (s *Service) ListAllRentals() ([]*Rental, error) {
	rentals, err := s.repo.ListAll()
	if err != nil {
		s.logger.Error("failed to list rental history", "error", err)
		return nil, err
	}
	return rentals, nil
}
