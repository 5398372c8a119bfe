package location

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/rental-management/internal"
	"github.com/frahmantamala/rental-management/internal/transport"
	"github.com/frahmantamala/rental-management/pkg/logger"
)

type ServiceAPI interface {
	ListLocations() ([]*Location, error)
	AddLocation(name string) (*Location, error)
	DeleteLocations(names []string) (int, error)
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

type addLocationRequest struct {
	Name string `json:"name"`
}

type deleteLocationsRequest struct {
	Names []string `json:"names"`
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.Service.ListLocations()
	if err != nil {
		h.Logger.Error("ListLocations: service error", "error", err)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, locations)
}

func (h *Handler) AddLocation(w http.ResponseWriter, r *http.Request) {
	var req addLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("AddLocation: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loc, err := h.Service.AddLocation(req.Name)
	if err != nil {
		h.Logger.Error("AddLocation: service error", "error", err, "name", req.Name)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, loc)
}

func (h *Handler) DeleteLocations(w http.ResponseWriter, r *http.Request) {
	var req deleteLocationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("DeleteLocations: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deleted, err := h.Service.DeleteLocations(req.Names)
	if err != nil {
		h.Logger.Error("DeleteLocations: service error", "error", err, "names", req.Names)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func mapServiceError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, ErrLocationExists) {
		return apperrors.NewConflictError("location already exists", apperrors.ErrCodeLocationExists)
	}
	return err
}
