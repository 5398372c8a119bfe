package identity

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/rental-management/internal"
)

// Provisioner looks up or creates the persistent user record behind
// an asserted email.
type Provisioner interface {
	EnsureUser(email, displayName string) (*User, error)
}

// Middleware reads the proxy-asserted identity headers and stores the
// resolved user in the request context. A missing email header yields
// a guest identity; lookup failures fall back to guest rather than
// failing the request, since reads must keep working when the user
// store is down.
func Middleware(cfg internal.IdentityConfig, users Provisioner, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := r.Header.Get(cfg.EmailHeader)

			var user *User
			if email == "" {
				user = Guest(cfg.GuestEmail)
			} else {
				displayName := r.Header.Get(cfg.DisplayNameHeader)
				if displayName == "" {
					displayName = DisplayNameFromEmail(email)
				}
				resolved, err := users.EnsureUser(email, displayName)
				if err != nil {
					logger.Error("failed to resolve user, acting as guest", "error", err, "email", email)
					user = Guest(cfg.GuestEmail)
				} else {
					user = resolved
				}
			}

			ctx := ContextWithUser(r.Context(), user)
			ctx = internal.ContextWithUserEmail(ctx, user.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireWrite guards mutating routes. Guests keep the read surface
// but cannot change state.
func RequireWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.CanWrite() {
			appErr := internal.NewForbiddenError("write access requires an asserted identity", internal.ErrCodeInsufficientPermission)
			status, body := appErr.ToHTTPResponse()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(body)
			return
		}
		next.ServeHTTP(w, r)
	})
}
