// Package backup holds the append-only audit log of equipment
// mutations. Every add, update and delete writes a full row snapshot,
// which is what makes undo-delete possible without a real transaction
// log.
package backup

import (
	"time"
)

const (
	OpAdd     = "add"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpRestore = "restore"
)

// DeleteMatchTolerance is the window used to correlate backup rows
// with a bulk delete: rows written by one batch share a timestamp to
// within this tolerance.
const DeleteMatchTolerance = time.Second

// Entry is one audit row: the operation plus a full equipment snapshot.
type Entry struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Timestamp     time.Time `json:"timestamp" gorm:"index;not null"`
	OperationType string    `json:"operation_type" gorm:"column:operation_type;not null"`
	EquipmentID   int64     `json:"equipment_id" gorm:"column:equipment_id;not null"`
	Name          string    `json:"name"`
	Specification string    `json:"specification"`
	Model         string    `json:"model"`
	Manufacturer  string    `json:"manufacturer"`
	SerialNumber  string    `json:"serial_number" gorm:"column:serial_number"`
	TotalQuantity int       `json:"total_quantity" gorm:"column:total_quantity"`
	Alias         string    `json:"alias"`
	HomeLocation  string    `json:"home_location" gorm:"column:home_location"`
	Note1         string    `json:"note1"`
	Note2         string    `json:"note2"`
	ActingUser    string    `json:"acting_user" gorm:"column:acting_user"`
}

func (Entry) TableName() string {
	return "equipment_backups"
}

// Repository is the audit log store. Append-only except for reads that
// support restore.
type Repository interface {
	Append(entry *Entry) error
	// FindDeletesAround returns delete entries whose timestamp is
	// within the tolerance of ts.
	FindDeletesAround(ts time.Time, tolerance time.Duration) ([]*Entry, error)
	ListByEquipmentID(equipmentID int64) ([]*Entry, error)
}
