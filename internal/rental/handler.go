package rental

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/frahmantamala/rental-management/internal"
	"github.com/frahmantamala/rental-management/internal/core/dates"
	"github.com/frahmantamala/rental-management/internal/equipment"
	"github.com/frahmantamala/rental-management/internal/identity"
	"github.com/frahmantamala/rental-management/internal/transport"
	"github.com/frahmantamala/rental-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	RegisterRental(dto RegisterRentalDTO, borrower string) (*Rental, error)
	UpdateRentalPeriod(rentalID string, dto UpdatePeriodDTO) error
	ReturnEquipment(rentalID string, dto ReturnDTO) error
	UndoReturn(rentalID string) error
	DeleteRental(rentalID string) error
	CanAdmit(q AvailabilityQueryDTO) (bool, error)
	GetRental(rentalID string) (*Rental, error)
	ListActiveRentals() ([]*Rental, error)
	ListAllRentals() ([]*Rental, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) RegisterRental(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("RegisterRental: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RegisterRentalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RegisterRental: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Service.RegisterRental(dto, user.Email)
	if err != nil {
		h.Logger.Error("RegisterRental: service error", "error", err, "equipment_id", dto.EquipmentID)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.Logger.Info("RegisterRental: rental created",
		"rental_id", rec.ID,
		"equipment_id", rec.EquipmentID,
		"borrower", user.Email)

	h.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) UpdateRentalPeriod(w http.ResponseWriter, r *http.Request) {
	rentalID := chi.URLParam(r, "id")
	if rentalID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing rental id")
		return
	}

	var dto UpdatePeriodDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateRentalPeriod: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.UpdateRentalPeriod(rentalID, dto); err != nil {
		h.Logger.Error("UpdateRentalPeriod: service error", "error", err, "rental_id", rentalID)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) ReturnEquipment(w http.ResponseWriter, r *http.Request) {
	rentalID := chi.URLParam(r, "id")
	if rentalID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing rental id")
		return
	}

	var dto ReturnDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ReturnEquipment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ReturnEquipment(rentalID, dto); err != nil {
		h.Logger.Error("ReturnEquipment: service error", "error", err, "rental_id", rentalID)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "returned"})
}

func (h *Handler) UndoReturn(w http.ResponseWriter, r *http.Request) {
	rentalID := chi.URLParam(r, "id")
	if rentalID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing rental id")
		return
	}

	if err := h.Service.UndoReturn(rentalID); err != nil {
		h.Logger.Error("UndoReturn: service error", "error", err, "rental_id", rentalID)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func (h *Handler) DeleteRental(w http.ResponseWriter, r *http.Request) {
	rentalID := chi.URLParam(r, "id")
	if rentalID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing rental id")
		return
	}

	if err := h.Service.DeleteRental(rentalID); err != nil {
		h.Logger.Error("DeleteRental: service error", "error", err, "rental_id", rentalID)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GetRental(w http.ResponseWriter, r *http.Request) {
	rentalID := chi.URLParam(r, "id")
	if rentalID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing rental id")
		return
	}

	rec, err := h.Service.GetRental(rentalID)
	if err != nil {
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) ListActiveRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.Service.ListActiveRentals()
	if err != nil {
		h.Logger.Error("ListActiveRentals: service error", "error", err)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, rentals)
}

func (h *Handler) ListRentalHistory(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.Service.ListAllRentals()
	if err != nil {
		h.Logger.Error("ListRentalHistory: service error", "error", err)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, rentals)
}

// CheckAvailability answers a dry-run admission query from the query
// string: equipment_id, start_date, end_date, quantity, and an
// optional exclude_rental_id for period-edit previews.
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q, err := parseAvailabilityQuery(r)
	if err != nil {
		h.Logger.Error("CheckAvailability: bad query", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	available, err := h.Service.CanAdmit(*q)
	if err != nil {
		h.Logger.Error("CheckAvailability: service error", "error", err, "equipment_id", q.EquipmentID)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, AvailabilityResponse{Available: available})
}

func parseAvailabilityQuery(r *http.Request) (*AvailabilityQueryDTO, error) {
	values := r.URL.Query()

	equipmentID, err := strconv.ParseInt(values.Get("equipment_id"), 10, 64)
	if err != nil {
		return nil, errors.New("equipment_id must be an integer")
	}

	start, err := dates.Parse(values.Get("start_date"))
	if err != nil {
		return nil, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := dates.Parse(values.Get("end_date"))
	if err != nil {
		return nil, errors.New("end_date must be YYYY-MM-DD")
	}

	quantity, err := strconv.Atoi(values.Get("quantity"))
	if err != nil {
		return nil, errors.New("quantity must be an integer")
	}

	return &AvailabilityQueryDTO{
		EquipmentID:     equipmentID,
		StartDate:       start,
		EndDate:         end,
		Quantity:        quantity,
		ExcludeRentalID: values.Get("exclude_rental_id"),
	}, nil
}

// mapServiceError translates domain sentinels into the API error
// taxonomy; AppErrors pass through untouched.
func mapServiceError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, ErrRentalNotFound):
		return apperrors.NewNotFoundError("rental not found", apperrors.ErrCodeRentalNotFound)
	case errors.Is(err, equipment.ErrEquipmentNotFound):
		return apperrors.NewNotFoundError("equipment not found", apperrors.ErrCodeEquipmentNotFound)
	case errors.Is(err, ErrCapacityExceeded):
		return apperrors.NewConflictError("requested quantity exceeds available capacity for the period", apperrors.ErrCodeCapacityExceeded)
	case errors.Is(err, ErrAlreadyReturned):
		return apperrors.NewConflictError("rental has already been returned", apperrors.ErrCodeAlreadyReturned)
	case errors.Is(err, ErrNotReturned):
		return apperrors.NewValidationError("rental is not in returned status", apperrors.ErrCodeValidationFailed)
	case errors.Is(err, ErrInvalidQuantity):
		return apperrors.NewValidationError("return quantity exceeds outstanding quantity", apperrors.ErrCodeInvalidQuantity)
	default:
		return err
	}
}
