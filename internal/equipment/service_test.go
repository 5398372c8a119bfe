package equipment_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/rental-management/internal/backup"
	"github.com/frahmantamala/rental-management/internal/core/events"
	"github.com/frahmantamala/rental-management/internal/equipment"
)

func TestEquipment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Equipment Suite")
}

// Mock repository for testing
type mockEquipmentRepository struct {
	items       map[int64]*equipment.Equipment
	nextID      int64
	createError error
}

func newMockEquipmentRepository() *mockEquipmentRepository {
	return &mockEquipmentRepository{items: make(map[int64]*equipment.Equipment), nextID: 1}
}

func (m *mockEquipmentRepository) Create(eq *equipment.Equipment) error {
	if m.createError != nil {
		return m.createError
	}
	if eq.ID == 0 {
		eq.ID = m.nextID
		m.nextID++
	} else {
		if _, exists := m.items[eq.ID]; exists {
			return gormDuplicateErr
		}
		if eq.ID >= m.nextID {
			m.nextID = eq.ID + 1
		}
	}
	copied := *eq
	m.items[eq.ID] = &copied
	return nil
}

func (m *mockEquipmentRepository) GetByID(id int64) (*equipment.Equipment, error) {
	eq, ok := m.items[id]
	if !ok {
		return nil, equipment.ErrEquipmentNotFound
	}
	copied := *eq
	return &copied, nil
}

func (m *mockEquipmentRepository) GetAll() ([]*equipment.Equipment, error) {
	var out []*equipment.Equipment
	for i := int64(1); i < m.nextID; i++ {
		if eq, ok := m.items[i]; ok {
			copied := *eq
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockEquipmentRepository) Update(eq *equipment.Equipment) error {
	if _, ok := m.items[eq.ID]; !ok {
		return equipment.ErrEquipmentNotFound
	}
	copied := *eq
	m.items[eq.ID] = &copied
	return nil
}

func (m *mockEquipmentRepository) DeleteByIDs(ids []int64) ([]*equipment.Equipment, error) {
	var deleted []*equipment.Equipment
	for _, id := range ids {
		if eq, ok := m.items[id]; ok {
			copied := *eq
			deleted = append(deleted, &copied)
			delete(m.items, id)
		}
	}
	return deleted, nil
}

var gormDuplicateErr = &duplicateKeyError{}

type duplicateKeyError struct{}

func (*duplicateKeyError) Error() string { return "duplicate key" }

// Mock backup repository for testing
type mockBackupRepository struct {
	entries     []*backup.Entry
	appendError error
}

func (m *mockBackupRepository) Append(entry *backup.Entry) error {
	if m.appendError != nil {
		return m.appendError
	}
	copied := *entry
	copied.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *mockBackupRepository) FindDeletesAround(ts time.Time, tolerance time.Duration) ([]*backup.Entry, error) {
	var out []*backup.Entry
	for _, e := range m.entries {
		if e.OperationType != backup.OpDelete {
			continue
		}
		diff := e.Timestamp.Sub(ts)
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBackupRepository) ListByEquipmentID(equipmentID int64) ([]*backup.Entry, error) {
	var out []*backup.Entry
	for _, e := range m.entries {
		if e.EquipmentID == equipmentID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBackupRepository) deletesAt() []time.Time {
	var out []time.Time
	for _, e := range m.entries {
		if e.OperationType == backup.OpDelete {
			out = append(out, e.Timestamp)
		}
	}
	return out
}

var _ = Describe("EquipmentService", func() {
	var (
		service    *equipment.Service
		repo       *mockEquipmentRepository
		backups    *mockBackupRepository
		testLogger *slog.Logger
	)

	towerLight := equipment.EquipmentDTO{
		Name:          "Tower Light",
		Model:         "LT-400",
		Manufacturer:  "Denyo",
		TotalQuantity: 6,
		HomeLocation:  "North Yard",
	}

	BeforeEach(func() {
		repo = newMockEquipmentRepository()
		backups = &mockBackupRepository{}
		testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewEventBus(testLogger)
		service = equipment.NewService(repo, backups, bus, testLogger)
	})

	Describe("AddEquipment", func() {
		It("creates the item and logs an add entry", func() {
			eq, err := service.AddEquipment(towerLight, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(eq.ID).To(BeNumerically(">", 0))
			Expect(eq.Name).To(Equal("Tower Light"))

			Expect(backups.entries).To(HaveLen(1))
			Expect(backups.entries[0].OperationType).To(Equal(backup.OpAdd))
			Expect(backups.entries[0].ActingUser).To(Equal("admin@example.com"))
		})

		It("rejects a missing name", func() {
			dto := towerLight
			dto.Name = ""
			_, err := service.AddEquipment(dto, "admin@example.com")
			Expect(err).To(HaveOccurred())
		})

		It("rejects a zero total quantity", func() {
			dto := towerLight
			dto.TotalQuantity = 0
			_, err := service.AddEquipment(dto, "admin@example.com")
			Expect(err).To(HaveOccurred())
		})

		It("still succeeds when the audit append fails", func() {
			backups.appendError = gormDuplicateErr
			eq, err := service.AddEquipment(towerLight, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(eq.ID).To(BeNumerically(">", 0))
		})
	})

	Describe("UpdateEquipment", func() {
		It("overwrites master data and logs an update entry", func() {
			eq, err := service.AddEquipment(towerLight, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())

			dto := towerLight
			dto.TotalQuantity = 8
			dto.Note1 = "two units in repair"
			updated, err := service.UpdateEquipment(eq.ID, dto, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.TotalQuantity).To(Equal(8))
			Expect(updated.Note1).To(Equal("two units in repair"))

			Expect(backups.entries).To(HaveLen(2))
			Expect(backups.entries[1].OperationType).To(Equal(backup.OpUpdate))
		})

		It("fails for unknown equipment", func() {
			_, err := service.UpdateEquipment(999, towerLight, "admin@example.com")
			Expect(err).To(MatchError(equipment.ErrEquipmentNotFound))
		})
	})

	Describe("DeleteEquipment and UndoDelete", func() {
		It("snapshots every deleted row under one timestamp", func() {
			first, err := service.AddEquipment(towerLight, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			second := towerLight
			second.Name = "Generator 25kVA"
			secondEq, err := service.AddEquipment(second, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())

			deleted, err := service.DeleteEquipment([]int64{first.ID, secondEq.ID}, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(Equal(2))

			stamps := backups.deletesAt()
			Expect(stamps).To(HaveLen(2))
			Expect(stamps[0]).To(Equal(stamps[1]))
		})

		It("restores the batch from the backup timestamp, preserving ids", func() {
			eq, err := service.AddEquipment(towerLight, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			originalID := eq.ID

			_, err = service.DeleteEquipment([]int64{originalID}, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.GetEquipment(originalID)
			Expect(err).To(MatchError(equipment.ErrEquipmentNotFound))

			ts := backups.deletesAt()[0]
			restored, err := service.UndoDelete(ts, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(restored).To(Equal(1))

			got, err := service.GetEquipment(originalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Tower Light"))
			Expect(got.TotalQuantity).To(Equal(6))
		})

		It("matches restore timestamps within the tolerance window", func() {
			eq, err := service.AddEquipment(towerLight, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.DeleteEquipment([]int64{eq.ID}, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())

			ts := backups.deletesAt()[0].Add(500 * time.Millisecond)
			restored, err := service.UndoDelete(ts, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(restored).To(Equal(1))
		})

		It("reports nothing to restore for an unmatched timestamp", func() {
			eq, err := service.AddEquipment(towerLight, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.DeleteEquipment([]int64{eq.ID}, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())

			ts := backups.deletesAt()[0].Add(time.Hour)
			_, err = service.UndoDelete(ts, "admin@example.com")
			Expect(err).To(MatchError(equipment.ErrNothingToRestore))
		})

		It("skips rows whose id has been reused", func() {
			eq, err := service.AddEquipment(towerLight, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.DeleteEquipment([]int64{eq.ID}, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())

			// occupy the freed id before the restore
			occupant := &equipment.Equipment{ID: eq.ID, Name: "Occupant", TotalQuantity: 1}
			Expect(repo.Create(occupant)).To(Succeed())

			ts := backups.deletesAt()[0]
			restored, err := service.UndoDelete(ts, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(restored).To(Equal(0))
		})
	})
})
