package postgres

import (
	"github.com/frahmantamala/rental-management/internal/site"
	"gorm.io/gorm"
)

// SiteRepository implements the site.Repository interface using GORM
type SiteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) site.Repository {
	return &SiteRepository{db: db}
}

func (r *SiteRepository) GetAll() ([]*site.Site, error) {
	var sites []*site.Site
	err := r.db.Order("created_at DESC").Find(&sites).Error
	return sites, err
}

func (r *SiteRepository) GetByName(name string) (*site.Site, error) {
	var s site.Site
	err := r.db.Where("name = ?", name).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, site.ErrSiteNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SiteRepository) Create(s *site.Site) error {
	return r.db.Create(s).Error
}

func (r *SiteRepository) DeleteByNames(names []string) (int, error) {
	result := r.db.Where("name IN ?", names).Delete(&site.Site{})
	return int(result.RowsAffected), result.Error
}
