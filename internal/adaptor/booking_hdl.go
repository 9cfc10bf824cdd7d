package adaptor

import (
	"net/http"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// SubmitPaymentProof handles POST /api/bookings/{id}/payment-proof
func (h *BookingHandler) SubmitPaymentProof(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.PaymentProofRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.SubmitPaymentProof(r.Context(), userID.String(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "submit payment proof")
		return
	}

	utils.ResponseSuccess(w, "Payment proof submitted", booking)
}

// GetUserBookings handles GET /api/user/bookings
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.GetUserBookings(r.Context(), userID.String(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBooking handles GET /api/bookings/{id}. Staff who can view bookings see
// any booking; customers only their own.
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	booking, err := h.service.GetBooking(r.Context(), userID.String(), chi.URLParam(r, "id"),
		entity.Role(role).Has(entity.PermViewBookings))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// ==================== STAFF ====================

// ListBookings handles GET /api/admin/bookings?status=
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListBookings(r.Context(), r.URL.Query().Get("status"), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// VerifyAdvancePayment handles POST /api/admin/bookings/{id}/verify
func (h *BookingHandler) VerifyAdvancePayment(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.VerifyPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.VerifyAdvancePayment(r.Context(), staffID.String(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "verify advance payment")
		return
	}

	utils.ResponseSuccess(w, "Payment verified", booking)
}

// RecordBalancePayment handles POST /api/admin/bookings/{id}/balance-payment
func (h *BookingHandler) RecordBalancePayment(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.VerifyPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.RecordBalancePayment(r.Context(), staffID.String(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "record balance payment")
		return
	}

	utils.ResponseSuccess(w, "Balance payment recorded", booking)
}

// CancelBooking handles POST /api/admin/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.CancelBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), staffID.String(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}
