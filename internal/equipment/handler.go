package equipment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/frahmantamala/rental-management/internal"
	"github.com/frahmantamala/rental-management/internal/identity"
	"github.com/frahmantamala/rental-management/internal/transport"
	"github.com/frahmantamala/rental-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListEquipment() ([]*Equipment, error)
	GetEquipment(id int64) (*Equipment, error)
	AddEquipment(dto EquipmentDTO, actingUser string) (*Equipment, error)
	UpdateEquipment(id int64, dto EquipmentDTO, actingUser string) (*Equipment, error)
	DeleteEquipment(ids []int64, actingUser string) (int, error)
	UndoDelete(ts time.Time, actingUser string) (int, error)
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

func (h *Handler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListEquipment()
	if err != nil {
		h.Logger.Error("ListEquipment: service error", "error", err)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	item, err := h.Service.GetEquipment(id)
	if err != nil {
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AddEquipment(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("AddEquipment: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto EquipmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AddEquipment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.AddEquipment(dto, user.Email)
	if err != nil {
		h.Logger.Error("AddEquipment: service error", "error", err, "name", dto.Name)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.Logger.Info("AddEquipment: equipment created",
		"equipment_id", item.ID,
		"name", item.Name,
		"acting_user", user.Email)

	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("UpdateEquipment: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	var dto EquipmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateEquipment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.UpdateEquipment(id, dto, user.Email)
	if err != nil {
		h.Logger.Error("UpdateEquipment: service error", "error", err, "equipment_id", id)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

// DeleteEquipment removes a batch of items. A POST rather than a
// DELETE because it carries a body of ids and every row is snapshotted
// to the backup log first, keyed by one shared timestamp that
// UndoDelete later correlates on.
func (h *Handler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("DeleteEquipment: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto DeleteEquipmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("DeleteEquipment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	deleted, err := h.Service.DeleteEquipment(dto.IDs, user.Email)
	if err != nil {
		h.Logger.Error("DeleteEquipment: service error", "error", err, "ids", dto.IDs)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.Logger.Info("DeleteEquipment: equipment deleted",
		"count", deleted,
		"acting_user", user.Email)

	h.WriteJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *Handler) RestoreEquipment(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("RestoreEquipment: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RestoreEquipmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RestoreEquipment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	restored, err := h.Service.UndoDelete(dto.Timestamp, user.Email)
	if err != nil {
		h.Logger.Error("RestoreEquipment: service error", "error", err, "timestamp", dto.Timestamp)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.Logger.Info("RestoreEquipment: equipment restored",
		"count", restored,
		"acting_user", user.Email)

	h.WriteJSON(w, http.StatusOK, map[string]int{"restored": restored})
}

func mapServiceError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, ErrEquipmentNotFound):
		return apperrors.NewNotFoundError("equipment not found", apperrors.ErrCodeEquipmentNotFound)
	case errors.Is(err, ErrNothingToRestore):
		return apperrors.NewNotFoundError("no deleted equipment found at that timestamp", apperrors.ErrCodeBackupNotFound)
	default:
		return err
	}
}
