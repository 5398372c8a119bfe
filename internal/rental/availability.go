package rental

import (
	"log/slog"

	"github.com/frahmantamala/rental-management/internal/core/dates"
	"github.com/frahmantamala/rental-management/internal/equipment"
)

// RentalSource is the slice of the repository the engine needs: the
// active reservations of one equipment item.
type RentalSource interface {
	ListActiveByEquipment(equipmentID int64) ([]*Rental, error)
}

// EquipmentSource resolves the capacity being allocated against.
type EquipmentSource interface {
	GetByID(id int64) (*equipment.Equipment, error)
}

// Engine decides whether a proposed reservation fits the equipment's
// total quantity. It never mutates state; callers serialize the
// check against the write that consumes the admitted capacity.
type Engine struct {
	rentals   RentalSource
	equipment EquipmentSource
	logger    *slog.Logger
}

func NewEngine(rentals RentalSource, equipmentSource EquipmentSource, logger *slog.Logger) *Engine {
	return &Engine{
		rentals:   rentals,
		equipment: equipmentSource,
		logger:    logger,
	}
}

// CanAdmit reports whether quantity units of the equipment can be
// reserved over [start, end] inclusive without exceeding total
// capacity on any single day.
//
// Every day in the range is checked, not just the endpoints: existing
// reservations can start or end anywhere inside the candidate window,
// so the peak load may sit in the middle. excludeRentalID skips one
// rental from the accumulation; period edits pass their own ID so the
// old allocation does not count against the new one.
func (e *Engine) CanAdmit(equipmentID int64, start, end dates.Date, quantity int, excludeRentalID string) (bool, error) {
	eq, err := e.equipment.GetByID(equipmentID)
	if err != nil {
		e.logger.Warn("availability check failed to resolve equipment", "error", err, "equipment_id", equipmentID)
		return false, err
	}
	total := eq.TotalQuantity

	active, err := e.rentals.ListActiveByEquipment(equipmentID)
	if err != nil {
		e.logger.Error("failed to load active rentals", "error", err, "equipment_id", equipmentID)
		return false, err
	}

	for day := start; !day.After(end); day = day.AddDays(1) {
		reserved := 0
		for _, r := range active {
			if r.ID == excludeRentalID {
				continue
			}
			if r.CoversDay(day) {
				reserved += r.Quantity
			}
		}
		if reserved+quantity > total {
			e.logger.Info("admission rejected",
				"equipment_id", equipmentID,
				"day", day.String(),
				"reserved", reserved,
				"requested", quantity,
				"total", total)
			return false, nil
		}
	}

	return true, nil
}
