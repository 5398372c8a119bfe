package site

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
	ListSites() ([]*Site, error)
	AddSite(name string) (*Site, error)
	DeleteSites(names []string) (int, error)
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

type addSiteRequest struct {
	Name string `json:"name"`
}

type deleteSitesRequest struct {
	Names []string `json:"names"`
}

func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.Service.ListSites()
	if err != nil {
		h.Logger.Error("ListSites: service error", "error", err)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, sites)
}

func (h *Handler) AddSite(w http.ResponseWriter, r *http.Request) {
	var req addSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("AddSite: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, err := h.Service.AddSite(req.Name)
	if err != nil {
		h.Logger.Error("AddSite: service error", "error", err, "name", req.Name)
		h.HandleServiceError(w, mapServiceError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, site)
}

func (h *Handler) DeleteSites(w http.ResponseWriter, r *http.Request) {
	var req deleteSitesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("DeleteSites: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deleted, err := h.Service.DeleteSites(req.Names)
	if err != nil {
		h.Logger.Error("DeleteSites: service error", "error", err, "names", req.Names)
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

	if errors.Is(err, ErrSiteExists) {
		return apperrors.NewConflictError("site already exists", apperrors.ErrCodeSiteExists)
	}
	return err
}
