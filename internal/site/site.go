package site

import (
	"errors"
	"time"
)

// Site is a job site that equipment gets lent out to. Rentals store
// the site name denormalized; this master list drives selection and
// is extended on demand when a rental references an unseen name.
type Site struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Site) TableName() string {
	return "sites"
}

var (
	ErrSiteExists   = errors.New("site already exists")
	ErrSiteNotFound = errors.New("site not found")
)
