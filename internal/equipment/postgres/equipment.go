package postgres

import (
	"time"

	"github.com/frahmantamala/rental-management/internal/equipment"
	"gorm.io/gorm"
)

// EquipmentRepository implements the equipment.Repository interface using GORM
type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) equipment.Repository {
	return &EquipmentRepository{db: db}
}

// Create inserts a new equipment row. A zero ID is assigned
// monotonically (max existing + 1) inside the insert transaction;
// a non-zero ID is kept as-is, which restore relies on.
func (r *EquipmentRepository) Create(eq *equipment.Equipment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if eq.ID == 0 {
			var maxID int64
			if err := tx.Model(&equipment.Equipment{}).
				Select("COALESCE(MAX(id), 0)").
				Scan(&maxID).Error; err != nil {
				return err
			}
			eq.ID = maxID + 1
		}
		return tx.Create(eq).Error
	})
}

func (r *EquipmentRepository) GetByID(id int64) (*equipment.Equipment, error) {
	var eq equipment.Equipment
	err := r.db.Where("id = ?", id).First(&eq).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, equipment.ErrEquipmentNotFound
		}
		return nil, err
	}
	return &eq, nil
}

func (r *EquipmentRepository) GetAll() ([]*equipment.Equipment, error) {
	var items []*equipment.Equipment
	err := r.db.Order("id ASC").Find(&items).Error
	return items, err
}

func (r *EquipmentRepository) Update(eq *equipment.Equipment) error {
	eq.UpdatedAt = time.Now()
	return r.db.Save(eq).Error
}

// DeleteByIDs removes the given rows and returns the snapshots of what
// was actually deleted, so the caller can audit-log them.
func (r *EquipmentRepository) DeleteByIDs(ids []int64) ([]*equipment.Equipment, error) {
	var deleted []*equipment.Equipment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", ids).Find(&deleted).Error; err != nil {
			return err
		}
		if len(deleted) == 0 {
			return nil
		}
		return tx.Where("id IN ?", ids).Delete(&equipment.Equipment{}).Error
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
