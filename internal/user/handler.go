package user

import (
	"net/http"

	"github.com/frahmantamala/rental-management/internal/identity"
	"github.com/frahmantamala/rental-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
}

func NewHandler() *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
	}
}

// GetCurrentUser returns the identity resolved for this request.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := identity.UserFromContext(r.Context())
	if !ok || u == nil {
		h.Logger.Error("GetCurrentUser: identity missing from context")
		h.WriteError(w, http.StatusInternalServerError, "identity not resolved")
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}
