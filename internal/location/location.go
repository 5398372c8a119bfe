package location

import (
	"errors"
	"time"
)

// Location is a storage place for idle equipment. Informational only;
// locations do not participate in the capacity accounting.
type Location struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Location) TableName() string {
	return "locations"
}

var (
	ErrLocationExists   = errors.New("location already exists")
	ErrLocationNotFound = errors.New("location not found")
)
