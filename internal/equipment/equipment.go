package equipment

import (
	"errors"
	"time"
)

// Equipment is a catalogued item with a fixed number of units that can
// be on loan at once. IDs are assigned monotonically (max existing + 1)
// to stay stable across deletes and restores.
type Equipment struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name          string    `json:"name" gorm:"not null"`
	Specification string    `json:"specification"`
	Model         string    `json:"model"`
	Manufacturer  string    `json:"manufacturer"`
	SerialNumber  string    `json:"serial_number" gorm:"column:serial_number"`
	TotalQuantity int       `json:"total_quantity" gorm:"column:total_quantity;not null"`
	Alias         string    `json:"alias"`
	HomeLocation  string    `json:"home_location" gorm:"column:home_location"`
	Note1         string    `json:"note1"`
	Note2         string    `json:"note2"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// Domain errors
var (
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrNothingToRestore  = errors.New("no deleted equipment found for timestamp")
)
