package identity_test

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/rental-management/internal"
	"github.com/frahmantamala/rental-management/internal/identity"
)

func TestIdentity(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Identity Suite")
}

// Mock provisioner for testing
type mockProvisioner struct {
	users       map[string]*identity.User
	ensureError error
	lastEmail   string
	lastName    string
}

func (m *mockProvisioner) EnsureUser(email, displayName string) (*identity.User, error) {
	m.lastEmail = email
	m.lastName = displayName
	if m.ensureError != nil {
		return nil, m.ensureError
	}
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	u := &identity.User{Email: email, DisplayName: displayName, Permission: identity.PermissionViewer}
	return u, nil
}

var _ = Describe("Identity Middleware", func() {
	var (
		cfg         internal.IdentityConfig
		provisioner *mockProvisioner
		captured    *identity.User
		wrapped     http.Handler
	)

	BeforeEach(func() {
		cfg = internal.IdentityConfig{
			EmailHeader:       "X-Forwarded-Email",
			DisplayNameHeader: "X-Forwarded-User",
			GuestEmail:        "guest@local",
		}
		provisioner = &mockProvisioner{users: map[string]*identity.User{
			"admin@example.com": {Email: "admin@example.com", DisplayName: "Admin", Permission: identity.PermissionAdmin},
		}}
		captured = nil

		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured, _ = identity.UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		wrapped = identity.Middleware(cfg, provisioner, testLogger)(inner)
	})

	It("resolves a known user from the asserted email", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-Email", "admin@example.com")
		wrapped.ServeHTTP(httptest.NewRecorder(), req)

		Expect(captured).NotTo(BeNil())
		Expect(captured.Email).To(Equal("admin@example.com"))
		Expect(captured.Permission).To(Equal(identity.PermissionAdmin))
	})

	It("derives the display name from the email when the header is absent", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-Email", "operator@example.com")
		wrapped.ServeHTTP(httptest.NewRecorder(), req)

		Expect(provisioner.lastName).To(Equal("operator"))
	})

	It("prefers the asserted display name header", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-Email", "operator@example.com")
		req.Header.Set("X-Forwarded-User", "Site Operator")
		wrapped.ServeHTTP(httptest.NewRecorder(), req)

		Expect(provisioner.lastName).To(Equal("Site Operator"))
	})

	It("falls back to guest when no email is asserted", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		wrapped.ServeHTTP(httptest.NewRecorder(), req)

		Expect(captured).NotTo(BeNil())
		Expect(captured.Email).To(Equal("guest@local"))
		Expect(captured.Permission).To(Equal(identity.PermissionGuest))
		Expect(captured.IsGuest()).To(BeTrue())
	})

	It("falls back to guest when the user store fails", func() {
		provisioner.ensureError = errors.New("connection refused")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-Email", "operator@example.com")
		wrapped.ServeHTTP(httptest.NewRecorder(), req)

		Expect(captured).NotTo(BeNil())
		Expect(captured.Email).To(Equal("guest@local"))
	})
})

var _ = Describe("RequireWrite", func() {
	var guarded http.Handler

	BeforeEach(func() {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		guarded = identity.RequireWrite(inner)
	})

	serveAs := func(user *identity.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if user != nil {
			req = req.WithContext(identity.ContextWithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		return rec
	}

	It("lets a provisioned user through", func() {
		rec := serveAs(&identity.User{Email: "operator@example.com", Permission: identity.PermissionViewer})
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})

	It("rejects a guest with 403", func() {
		rec := serveAs(identity.Guest("guest@local"))
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring("INSUFFICIENT_PERMISSION"))
	})

	It("rejects a request with no resolved identity", func() {
		rec := serveAs(nil)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})
})
