package equipment

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/rental-management/internal/backup"
	"github.com/frahmantamala/rental-management/internal/core/events"
)

// Repository defines the data access methods for equipment
type Repository interface {
	Create(eq *Equipment) error
	GetByID(id int64) (*Equipment, error)
	GetAll() ([]*Equipment, error)
	Update(eq *Equipment) error
	DeleteByIDs(ids []int64) ([]*Equipment, error)
}

// Service handles the equipment catalogue: CRUD plus the audit-backed
// undo-delete flow.
type Service struct {
	repo    Repository
	backups backup.Repository
	bus     *events.EventBus
	logger  *slog.Logger
}

func NewService(repo Repository, backups backup.Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		backups: backups,
		bus:     bus,
		logger:  logger,
	}
}

func (s *Service) ListEquipment() ([]*Equipment, error) {
	items, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list equipment", "error", err)
		return nil, err
	}
	return items, nil
}

func (s *Service) GetEquipment(id int64) (*Equipment, error) {
	eq, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get equipment", "error", err, "equipment_id", id)
		return nil, ErrEquipmentNotFound
	}
	return eq, nil
}

func (s *Service) AddEquipment(dto EquipmentDTO, actingUser string) (*Equipment, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("equipment validation failed", "error", err)
		return nil, err
	}

	now := time.Now()
	eq := &Equipment{
		Name:          dto.Name,
		Specification: dto.Specification,
		Model:         dto.Model,
		Manufacturer:  dto.Manufacturer,
		SerialNumber:  dto.SerialNumber,
		TotalQuantity: dto.TotalQuantity,
		Alias:         dto.Alias,
		HomeLocation:  dto.HomeLocation,
		Note1:         dto.Note1,
		Note2:         dto.Note2,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(eq); err != nil {
		s.logger.Error("failed to create equipment", "error", err, "name", dto.Name)
		return nil, err
	}

	s.appendBackup(backup.OpAdd, eq, actingUser, now)

	s.logger.Info("equipment added",
		"equipment_id", eq.ID,
		"name", eq.Name,
		"total_quantity", eq.TotalQuantity,
		"acting_user", actingUser)

	return eq, nil
}

func (s *Service) UpdateEquipment(id int64, dto EquipmentDTO, actingUser string) (*Equipment, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("equipment validation failed", "error", err, "equipment_id", id)
		return nil, err
	}

	eq, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("equipment not found for update", "error", err, "equipment_id", id)
		return nil, ErrEquipmentNotFound
	}

	eq.Name = dto.Name
	eq.Specification = dto.Specification
	eq.Model = dto.Model
	eq.Manufacturer = dto.Manufacturer
	eq.SerialNumber = dto.SerialNumber
	eq.TotalQuantity = dto.TotalQuantity
	eq.Alias = dto.Alias
	eq.HomeLocation = dto.HomeLocation
	eq.Note1 = dto.Note1
	eq.Note2 = dto.Note2
	eq.UpdatedAt = time.Now()

	if err := s.repo.Update(eq); err != nil {
		s.logger.Error("failed to update equipment", "error", err, "equipment_id", id)
		return nil, err
	}

	s.appendBackup(backup.OpUpdate, eq, actingUser, time.Now())

	s.logger.Info("equipment updated", "equipment_id", id, "acting_user", actingUser)
	return eq, nil
}

// DeleteEquipment removes the given equipment rows. Each deleted row
// is snapshotted to the backup log with a shared timestamp so the
// whole batch can be undone in one restore call. Rental history is
// left untouched.
func (s *Service) DeleteEquipment(ids []int64, actingUser string) (int, error) {
	dto := DeleteEquipmentDTO{IDs: ids}
	if err := dto.Validate(); err != nil {
		return 0, err
	}

	deleted, err := s.repo.DeleteByIDs(ids)
	if err != nil {
		s.logger.Error("failed to delete equipment", "error", err, "ids", ids)
		return 0, err
	}

	ts := time.Now()
	for _, eq := range deleted {
		s.appendBackup(backup.OpDelete, eq, actingUser, ts)
	}

	if len(deleted) > 0 {
		deletedIDs := make([]int64, len(deleted))
		for i, eq := range deleted {
			deletedIDs[i] = eq.ID
		}
		s.bus.Publish(context.Background(), events.NewEquipmentDeletedEvent(deletedIDs, actingUser))
	}

	s.logger.Info("equipment deleted",
		"requested", len(ids),
		"deleted", len(deleted),
		"acting_user", actingUser)

	return len(deleted), nil
}

// UndoDelete re-inserts equipment rows whose backup delete entries
// fall within the match tolerance of ts, then logs a restore entry
// for each.
func (s *Service) UndoDelete(ts time.Time, actingUser string) (int, error) {
	dto := RestoreEquipmentDTO{Timestamp: ts}
	if err := dto.Validate(); err != nil {
		return 0, err
	}

	entries, err := s.backups.FindDeletesAround(ts, backup.DeleteMatchTolerance)
	if err != nil {
		s.logger.Error("failed to look up backup entries", "error", err, "timestamp", ts)
		return 0, err
	}
	if len(entries) == 0 {
		s.logger.Warn("no deleted equipment matched restore timestamp", "timestamp", ts)
		return 0, ErrNothingToRestore
	}

	restored := 0
	now := time.Now()
	for _, entry := range entries {
		eq := equipmentFromBackup(entry)
		eq.CreatedAt = now
		eq.UpdatedAt = now
		if err := s.repo.Create(eq); err != nil {
			// an id may already be re-used; skip rather than abort the batch
			s.logger.Warn("failed to restore equipment row", "error", err, "equipment_id", entry.EquipmentID)
			continue
		}
		s.appendBackup(backup.OpRestore, eq, actingUser, now)
		restored++
	}

	s.logger.Info("equipment restored",
		"matched", len(entries),
		"restored", restored,
		"acting_user", actingUser)

	return restored, nil
}

func (s *Service) appendBackup(op string, eq *Equipment, actingUser string, ts time.Time) {
	entry := &backup.Entry{
		Timestamp:     ts,
		OperationType: op,
		EquipmentID:   eq.ID,
		Name:          eq.Name,
		Specification: eq.Specification,
		Model:         eq.Model,
		Manufacturer:  eq.Manufacturer,
		SerialNumber:  eq.SerialNumber,
		TotalQuantity: eq.TotalQuantity,
		Alias:         eq.Alias,
		HomeLocation:  eq.HomeLocation,
		Note1:         eq.Note1,
		Note2:         eq.Note2,
		ActingUser:    actingUser,
	}
	if err := s.backups.Append(entry); err != nil {
		// the mutation itself succeeded; a missed audit row is logged, not fatal
		s.logger.Error("failed to append backup entry", "error", err, "operation", op, "equipment_id", eq.ID)
	}
}

func equipmentFromBackup(entry *backup.Entry) *Equipment {
	return &Equipment{
		ID:            entry.EquipmentID,
		Name:          entry.Name,
		Specification: entry.Specification,
		Model:         entry.Model,
		Manufacturer:  entry.Manufacturer,
		SerialNumber:  entry.SerialNumber,
		TotalQuantity: entry.TotalQuantity,
		Alias:         entry.Alias,
		HomeLocation:  entry.HomeLocation,
		Note1:         entry.Note1,
		Note2:         entry.Note2,
	}
}
