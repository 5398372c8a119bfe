package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRentalRegistered    = "rental.registered"
	EventTypeRentalReturned      = "rental.returned"
	EventTypeRentalPeriodUpdated = "rental.period_updated"
	EventTypeEquipmentDeleted    = "equipment.deleted"
)

type RentalRegisteredEvent struct {
	BaseEvent
	RentalID    string `json:"rental_id"`
	EquipmentID int64  `json:"equipment_id"`
	Quantity    int    `json:"quantity"`
	Site        string `json:"site"`
	Borrower    string `json:"borrower"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func NewRentalRegisteredEvent(rentalID string, equipmentID int64, quantity int, site, borrower, startDate, endDate string) *RentalRegisteredEvent {
	return &RentalRegisteredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRentalRegistered,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"rental_id":    rentalID,
				"equipment_id": equipmentID,
				"quantity":     quantity,
				"site":         site,
				"borrower":     borrower,
				"start_date":   startDate,
				"end_date":     endDate,
			},
		},
		RentalID:    rentalID,
		EquipmentID: equipmentID,
		Quantity:    quantity,
		Site:        site,
		Borrower:    borrower,
		StartDate:   startDate,
		EndDate:     endDate,
	}
}

type RentalReturnedEvent struct {
	BaseEvent
	RentalID         string `json:"rental_id"`
	EquipmentID      int64  `json:"equipment_id"`
	ReturnedQuantity int    `json:"returned_quantity"`
	ReturnDate       string `json:"return_date"`
	Partial          bool   `json:"partial"`
	SiblingRentalID  string `json:"sibling_rental_id,omitempty"`
}

func NewRentalReturnedEvent(rentalID string, equipmentID int64, returnedQuantity int, returnDate string, partial bool, siblingRentalID string) *RentalReturnedEvent {
	return &RentalReturnedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRentalReturned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"rental_id":         rentalID,
				"equipment_id":      equipmentID,
				"returned_quantity": returnedQuantity,
				"return_date":       returnDate,
				"partial":           partial,
				"sibling_rental_id": siblingRentalID,
			},
		},
		RentalID:         rentalID,
		EquipmentID:      equipmentID,
		ReturnedQuantity: returnedQuantity,
		ReturnDate:       returnDate,
		Partial:          partial,
		SiblingRentalID:  siblingRentalID,
	}
}

type RentalPeriodUpdatedEvent struct {
	BaseEvent
	RentalID  string `json:"rental_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func NewRentalPeriodUpdatedEvent(rentalID, startDate, endDate string) *RentalPeriodUpdatedEvent {
	return &RentalPeriodUpdatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRentalPeriodUpdated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"rental_id":  rentalID,
				"start_date": startDate,
				"end_date":   endDate,
			},
		},
		RentalID:  rentalID,
		StartDate: startDate,
		EndDate:   endDate,
	}
}

type EquipmentDeletedEvent struct {
	BaseEvent
	EquipmentIDs []int64 `json:"equipment_ids"`
	ActingUser   string  `json:"acting_user"`
}

func NewEquipmentDeletedEvent(equipmentIDs []int64, actingUser string) *EquipmentDeletedEvent {
	return &EquipmentDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEquipmentDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"equipment_ids": equipmentIDs,
				"acting_user":   actingUser,
			},
		},
		EquipmentIDs: equipmentIDs,
		ActingUser:   actingUser,
	}
}
