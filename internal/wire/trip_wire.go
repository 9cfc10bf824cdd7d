package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTrip(r chi.Router, tripHandler *adaptor.TripHandler, repo *repository.Repository, log *zap.Logger) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/trips", tripHandler.ListTrips)
	r.Get("/api/trips/{id}", tripHandler.GetTrip)
	r.Get("/api/trips/{id}/batches", tripHandler.ListBatches)

	// ==================== STAFF ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(authenticated(repo, log))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(entity.PermManageTrips, log))
			r.Get("/api/admin/trips", tripHandler.ListAllTrips)
			r.Post("/api/admin/trips", tripHandler.CreateTrip)
			r.Put("/api/admin/trips/{id}", tripHandler.UpdateTrip)
			r.Put("/api/admin/trips/{id}/booking-live", tripHandler.ToggleBookingLive)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(entity.PermManageBatches, log))
			r.Post("/api/admin/trips/{id}/batches", tripHandler.CreateBatch)
			r.Put("/api/admin/batches/{id}", tripHandler.UpdateBatch)
			r.Delete("/api/admin/batches/{id}", tripHandler.DeleteBatch)
		})
	})
}
