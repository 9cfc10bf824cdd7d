package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBroadcast(r chi.Router, broadcastHandler *adaptor.BroadcastHandler, repo *repository.Repository, log *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(authenticated(repo, log))
		r.Use(middleware.RequirePermission(entity.PermManageContent, log))

		r.Post("/api/admin/broadcasts", broadcastHandler.QueueBroadcast)
		r.Get("/api/admin/broadcasts", broadcastHandler.ListMessages)
	})
}
