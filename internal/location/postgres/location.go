package postgres

import (
	"github.com/frahmantamala/rental-management/internal/location"
	"gorm.io/gorm"
)

// LocationRepository implements the location.Repository interface using GORM
type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) location.Repository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) GetAll() ([]*location.Location, error) {
	var locations []*location.Location
	err := r.db.Order("name ASC").Find(&locations).Error
	return locations, err
}

func (r *LocationRepository) GetByName(name string) (*location.Location, error) {
	var l location.Location
	err := r.db.Where("name = ?", name).First(&l).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, location.ErrLocationNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepository) Create(l *location.Location) error {
	return r.db.Create(l).Error
}

func (r *LocationRepository) DeleteByNames(names []string) (int, error) {
	result := r.db.Where("name IN ?", names).Delete(&location.Location{})
	return int(result.RowsAffected), result.Error
}
