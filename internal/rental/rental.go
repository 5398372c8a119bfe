package rental

import (
	"errors"
	"time"

	"github.com/frahmantamala/rental-management/internal/core/dates"
)

// Rental statuses. A partially returned reservation stays active with
// a reduced quantity; the returned share lives on a sibling record.
const (
	StatusActive   = "active"
	StatusReturned = "returned"
)

// Rental reserves a quantity of one equipment item over an inclusive
// date range. The ID is an opaque surrogate assigned at creation and
// never reused; row position and timestamps are not identity.
type Rental struct {
	ID             string      `json:"id" gorm:"primaryKey"`
	EquipmentID    int64       `json:"equipment_id" gorm:"column:equipment_id;index;not null"`
	EquipmentName  string      `json:"equipment_name" gorm:"column:equipment_name"`
	Quantity       int         `json:"quantity" gorm:"not null"`
	StartDate      dates.Date  `json:"start_date" gorm:"column:start_date;type:date;not null"`
	EndDate        dates.Date  `json:"end_date" gorm:"column:end_date;type:date;not null"`
	Site           string      `json:"site" gorm:"not null"`
	Borrower       string      `json:"borrower" gorm:"not null"`
	SourceLocation string      `json:"source_location" gorm:"column:source_location"`
	RegisteredAt   time.Time   `json:"registered_at" gorm:"column:registered_at;not null"`
	Status         string      `json:"status" gorm:"not null;default:active"`
	ReturnDate     *dates.Date `json:"return_date,omitempty" gorm:"column:return_date;type:date"`
}

func (Rental) TableName() string {
	return "rentals"
}

func (r *Rental) IsActive() bool {
	return r.Status == StatusActive
}

// CoversDay reports whether the rental's period includes day.
func (r *Rental) CoversDay(day dates.Date) bool {
	return dates.Covers(r.StartDate, r.EndDate, day)
}

// Domain errors
var (
	ErrRentalNotFound   = errors.New("rental not found")
	ErrCapacityExceeded = errors.New("requested period and quantity exceed equipment capacity")
	ErrAlreadyReturned  = errors.New("rental is already returned")
	ErrNotReturned      = errors.New("rental is not in returned state")
	ErrInvalidQuantity  = errors.New("return quantity out of bounds")
)
