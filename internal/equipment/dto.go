package equipment

import (
	"time"

	errors "github.com/frahmantamala/rental-management/internal"
	"github.com/frahmantamala/rental-management/internal/core/common/validation"
)

// EquipmentDTO carries the writable fields for create and update.
type EquipmentDTO struct {
	Name          string `json:"name"`
	Specification string `json:"specification"`
	Model         string `json:"model"`
	Manufacturer  string `json:"manufacturer"`
	SerialNumber  string `json:"serial_number"`
	TotalQuantity int    `json:"total_quantity"`
	Alias         string `json:"alias"`
	HomeLocation  string `json:"home_location"`
	Note1         string `json:"note1"`
	Note2         string `json:"note2"`
}

func (dto EquipmentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(200)
	v.Field("total_quantity", dto.TotalQuantity).
		Required().
		MinInt(1, errors.ErrCodeInvalidQuantity)
	return v.Validate()
}

type DeleteEquipmentDTO struct {
	IDs []int64 `json:"ids"`
}

func (dto DeleteEquipmentDTO) Validate() *errors.AppError {
	if len(dto.IDs) == 0 {
		return errors.NewValidationError("ids must not be empty", errors.ErrCodeValidationFailed)
	}
	return nil
}

type RestoreEquipmentDTO struct {
	Timestamp time.Time `json:"timestamp"`
}

func (dto RestoreEquipmentDTO) Validate() *errors.AppError {
	if dto.Timestamp.IsZero() {
		return errors.NewValidationError("timestamp is required", errors.ErrCodeValidationFailed)
	}
	return nil
}
