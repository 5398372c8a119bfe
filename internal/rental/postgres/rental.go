package postgres

import (
	"errors"

	"github.com/frahmantamala/rental-management/internal/core/dates"
	"github.com/frahmantamala/rental-management/internal/rental"
	"gorm.io/gorm"
)

type RentalRepository struct {
	db *gorm.DB
}

func NewRentalRepository(db *gorm.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

func (r *RentalRepository) Create(rec *rental.Rental) error {
	return r.db.Create(rec).Error
}

func (r *RentalRepository) GetByID(id string) (*rental.Rental, error) {
	var rec rental.Rental
	err := r.db.Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rental.ErrRentalNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RentalRepository) ListActive() ([]*rental.Rental, error) {
	var recs []*rental.Rental
	err := r.db.Where("status = ?", rental.StatusActive).
		Order("registered_at DESC").
		Find(&recs).Error
	return recs, err
}

func (r *RentalRepository) ListAll() ([]*rental.Rental, error) {
	var recs []*rental.Rental
	err := r.db.Order("registered_at DESC").Find(&recs).Error
	return recs, err
}

func (r *RentalRepository) ListActiveByEquipment(equipmentID int64) ([]*rental.Rental, error) {
	var recs []*rental.Rental
	err := r.db.Where("equipment_id = ? AND status = ?", equipmentID, rental.StatusActive).
		Find(&recs).Error
	return recs, err
}

func (r *RentalRepository) UpdatePeriod(id string, start, end dates.Date) error {
	result := r.db.Model(&rental.Rental{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"start_date": start,
			"end_date":   end,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return rental.ErrRentalNotFound
	}
	return nil
}

func (r *RentalRepository) MarkReturned(id string, returnDate dates.Date) error {
	result := r.db.Model(&rental.Rental{}).
		Where("id = ? AND status = ?", id, rental.StatusActive).
		Updates(map[string]interface{}{
			"status":      rental.StatusReturned,
			"return_date": returnDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return rental.ErrAlreadyReturned
	}
	return nil
}

// SplitReturn shrinks the original record and appends the returned
// sibling atomically. The decrement goes first so a failure between
// the steps can only under-count reserved capacity.
func (r *RentalRepository) SplitReturn(originalID string, remainingQuantity int, sibling *rental.Rental) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&rental.Rental{}).
			Where("id = ? AND status = ?", originalID, rental.StatusActive).
			Update("quantity", remainingQuantity)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return rental.ErrRentalNotFound
		}
		return tx.Create(sibling).Error
	})
}

func (r *RentalRepository) Reactivate(id string) error {
	result := r.db.Model(&rental.Rental{}).
		Where("id = ? AND status = ?", id, rental.StatusReturned).
		Updates(map[string]interface{}{
			"status":      rental.StatusActive,
			"return_date": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return rental.ErrNotReturned
	}
	return nil
}

func (r *RentalRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&rental.Rental{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return rental.ErrRentalNotFound
	}
	return nil
}
