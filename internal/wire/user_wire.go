package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, repo *repository.Repository, log *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(authenticated(repo, log))

		r.Get("/api/user/profile", userHandler.GetProfile)
		r.Put("/api/user/profile", userHandler.UpdateProfile)

		// ==================== STAFF ROUTES ====================
		r.With(middleware.RequirePermission(entity.PermManageUsers, log)).Get("/api/admin/users", userHandler.GetAllUsers)
		r.With(middleware.RequirePermission(entity.PermManageUsers, log)).Delete("/api/admin/users/{id}", userHandler.DeleteUser)
		r.With(middleware.RequirePermission(entity.PermManageRoles, log)).Put("/api/admin/users/{id}/role", userHandler.UpdateRole)
	})
}
