package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/rental-management/internal"
	"github.com/frahmantamala/rental-management/internal/equipment"
	"github.com/frahmantamala/rental-management/internal/identity"
	"github.com/frahmantamala/rental-management/internal/location"
	"github.com/frahmantamala/rental-management/internal/rental"
	"github.com/frahmantamala/rental-management/internal/site"
	"github.com/frahmantamala/rental-management/internal/transport/middleware"
	"github.com/frahmantamala/rental-management/internal/transport/swagger"
	"github.com/frahmantamala/rental-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg *internal.Config, userProvisioner identity.Provisioner, userHandler *user.Handler, equipmentHandler *equipment.Handler, rentalHandler *rental.Handler, siteHandler *site.Handler, locationHandler *location.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORSWithOrigins(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Identity is proxy-asserted, so every route shares one
		// resolver; unknown callers fall back to the guest identity.
		r.Group(func(ar chi.Router) {
			ar.Use(identity.Middleware(cfg.Identity, userProvisioner, logger))

			if userHandler != nil {
				ar.Get("/users/me", userHandler.GetCurrentUser)
			}

			if equipmentHandler != nil {
				ar.Route("/equipment", func(er chi.Router) {
					er.Get("/", equipmentHandler.ListEquipment)
					er.Get("/{id}", equipmentHandler.GetEquipment)
					er.With(identity.RequireWrite).Post("/", equipmentHandler.AddEquipment)
					er.With(identity.RequireWrite).Put("/{id}", equipmentHandler.UpdateEquipment)
					er.With(identity.RequireWrite).Post("/delete", equipmentHandler.DeleteEquipment)
					er.With(identity.RequireWrite).Post("/restore", equipmentHandler.RestoreEquipment)
				})
			}

			if rentalHandler != nil {
				ar.Route("/rentals", func(rr chi.Router) {
					rr.Get("/", rentalHandler.ListActiveRentals)
					rr.Get("/history", rentalHandler.ListRentalHistory)
					rr.Get("/availability", rentalHandler.CheckAvailability)
					rr.Get("/{id}", rentalHandler.GetRental)
					rr.With(identity.RequireWrite).Post("/", rentalHandler.RegisterRental)
					rr.With(identity.RequireWrite).Patch("/{id}/period", rentalHandler.UpdateRentalPeriod)
					rr.With(identity.RequireWrite).Post("/{id}/return", rentalHandler.ReturnEquipment)
					rr.With(identity.RequireWrite).Post("/{id}/undo-return", rentalHandler.UndoReturn)
					rr.With(identity.RequireWrite).Delete("/{id}", rentalHandler.DeleteRental)
				})
			}

			if siteHandler != nil {
				ar.Route("/sites", func(sr chi.Router) {
					sr.Get("/", siteHandler.ListSites)
					sr.With(identity.RequireWrite).Post("/", siteHandler.AddSite)
					sr.With(identity.RequireWrite).Post("/delete", siteHandler.DeleteSites)
				})
			}

			if locationHandler != nil {
				ar.Route("/locations", func(lr chi.Router) {
					lr.Get("/", locationHandler.ListLocations)
					lr.With(identity.RequireWrite).Post("/", locationHandler.AddLocation)
					lr.With(identity.RequireWrite).Post("/delete", locationHandler.DeleteLocations)
				})
			}
		})
	})
}
