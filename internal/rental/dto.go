package rental

import (
	errors "github.com/frahmantamala/rental-management/internal"
	"github.com/frahmantamala/rental-management/internal/core/common/validation"
	"github.com/frahmantamala/rental-management/internal/core/dates"
)

// RegisterRentalDTO is the request payload for creating a reservation.
type RegisterRentalDTO struct {
	EquipmentID    int64      `json:"equipment_id"`
	StartDate      dates.Date `json:"start_date"`
	EndDate        dates.Date `json:"end_date"`
	Quantity       int        `json:"quantity"`
	Site           string     `json:"site"`
	SourceLocation string     `json:"source_location"`
}

func (dto RegisterRentalDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("equipment_id", dto.EquipmentID).Required()
	v.Field("quantity", dto.Quantity).Required().MinInt(1, errors.ErrCodeInvalidQuantity)
	v.Field("site", dto.Site).Required().MaxLength(200)
	v.Field("start_date", dto.StartDate).Required().NotAfter(dto.EndDate, "end_date")
	v.Field("end_date", dto.EndDate).Required()
	return v.Validate()
}

// UpdatePeriodDTO changes the reserved date range of one rental.
type UpdatePeriodDTO struct {
	StartDate dates.Date `json:"start_date"`
	EndDate   dates.Date `json:"end_date"`
}

func (dto UpdatePeriodDTO) Validate() *errors.AppError {
	return validation.ValidateRentalPeriod(dto.StartDate, dto.EndDate)
}

// ReturnDTO records a full or partial return.
type ReturnDTO struct {
	ReturnDate dates.Date `json:"return_date"`
	Quantity   int        `json:"quantity"`
}

func (dto ReturnDTO) Validate() *errors.AppError {
	if err := validation.ValidateQuantity(dto.Quantity); err != nil {
		return err
	}
	v := validation.NewValidator()
	v.Field("return_date", dto.ReturnDate).Required()
	return v.Validate()
}

// AvailabilityQueryDTO is the parsed form of the availability check
// query parameters.
type AvailabilityQueryDTO struct {
	EquipmentID     int64
	StartDate       dates.Date
	EndDate         dates.Date
	Quantity        int
	ExcludeRentalID string
}

func (dto AvailabilityQueryDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("equipment_id", dto.EquipmentID).Required()
	v.Field("quantity", dto.Quantity).Required().MinInt(1, errors.ErrCodeInvalidQuantity)
	v.Field("start", dto.StartDate).Required().NotAfter(dto.EndDate, "end")
	v.Field("end", dto.EndDate).Required()
	return v.Validate()
}

// AvailabilityResponse is returned by the availability endpoint.
type AvailabilityResponse struct {
	Available bool `json:"available"`
}
