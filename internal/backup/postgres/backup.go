package postgres

import (
	"time"

	"github.com/frahmantamala/rental-management/internal/backup"
	"gorm.io/gorm"
)

// BackupRepository implements backup.Repository using GORM
type BackupRepository struct {
	db *gorm.DB
}

func NewBackupRepository(db *gorm.DB) backup.Repository {
	return &BackupRepository{db: db}
}

func (r *BackupRepository) Append(entry *backup.Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return r.db.Create(entry).Error
}

func (r *BackupRepository) FindDeletesAround(ts time.Time, tolerance time.Duration) ([]*backup.Entry, error) {
	var entries []*backup.Entry
	err := r.db.
		Where("operation_type = ?", backup.OpDelete).
		Where("timestamp >= ? AND timestamp <= ?", ts.Add(-tolerance), ts.Add(tolerance)).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}

func (r *BackupRepository) ListByEquipmentID(equipmentID int64) ([]*backup.Entry, error) {
	var entries []*backup.Entry
	err := r.db.
		Where("equipment_id = ?", equipmentID).
		Order("timestamp DESC").
		Find(&entries).Error
	return entries, err
}
