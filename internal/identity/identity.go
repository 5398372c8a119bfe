// Package identity resolves the acting user for a request. The
// service sits behind a reverse proxy that asserts the caller's email
// in a header; there is no login flow here. Requests without an
// asserted identity act as an unpersisted guest.
package identity

import (
	"context"
	"strings"
)

const (
	PermissionAdmin  = "admin"
	PermissionUser   = "user"
	PermissionViewer = "viewer"
	PermissionGuest  = "guest"
)

// User is the resolved request identity.
type User struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Permission  string `json:"permission"`
}

func (u *User) IsGuest() bool {
	return u.Permission == PermissionGuest
}

func (u *User) CanWrite() bool {
	return u.Permission == PermissionAdmin || u.Permission == PermissionUser || u.Permission == PermissionViewer
}

// Guest returns the identity used when no email was asserted.
// Guests can read but never pass RequireWrite.
func Guest(guestEmail string) *User {
	return &User{
		Email:       guestEmail,
		DisplayName: "guest",
		Permission:  PermissionGuest,
	}
}

// DisplayNameFromEmail derives a fallback display name (the local
// part of the address).
func DisplayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

type ctxKey string

const userKey ctxKey = "identityUser"

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(userKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}
