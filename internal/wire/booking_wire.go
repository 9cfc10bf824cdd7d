package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, repo *repository.Repository, log *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(authenticated(repo, log))

		// ==================== CUSTOMER ROUTES ====================
		r.Post("/api/bookings", bookingHandler.CreateBooking)
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)
		r.Post("/api/bookings/{id}/payment-proof", bookingHandler.SubmitPaymentProof)

		// ==================== STAFF ROUTES ====================
		r.With(middleware.RequirePermission(entity.PermViewBookings, log)).Get("/api/admin/bookings", bookingHandler.ListBookings)
		r.With(middleware.RequirePermission(entity.PermVerifyPayments, log)).Post("/api/admin/bookings/{id}/verify", bookingHandler.VerifyAdvancePayment)
		r.With(middleware.RequirePermission(entity.PermVerifyPayments, log)).Post("/api/admin/bookings/{id}/balance-payment", bookingHandler.RecordBalancePayment)
		r.With(middleware.RequirePermission(entity.PermManageBookings, log)).Post("/api/admin/bookings/{id}/cancel", bookingHandler.CancelBooking)
	})
}
