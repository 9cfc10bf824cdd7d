package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(r chi.Router, reviewHandler *adaptor.ReviewHandler, repo *repository.Repository, log *zap.Logger) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/trips/{id}/reviews", reviewHandler.GetTripReviews)
	r.Get("/api/trips/{id}/review-stats", reviewHandler.GetTripReviewStats)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(authenticated(repo, log))

		r.Post("/api/reviews", reviewHandler.CreateReview)
		r.Get("/api/user/reviews", reviewHandler.GetUserReviews)
		r.Delete("/api/reviews/{id}", reviewHandler.DeleteReview)
	})
}
