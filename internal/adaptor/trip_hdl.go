package adaptor

import (
	"net/http"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TripHandler struct {
	service usecase.TripService
	log     *zap.Logger
}

func NewTripHandler(service usecase.TripService, log *zap.Logger) *TripHandler {
	return &TripHandler{
		service: service,
		log:     log.With(zap.String("handler", "trip")),
	}
}

// ListTrips handles GET /api/trips
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.service.ListTrips(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list trips")
		return
	}

	utils.ResponseSuccess(w, "success", trips)
}

// GetTrip handles GET /api/trips/{id}
func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := h.service.GetTrip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get trip")
		return
	}

	utils.ResponseSuccess(w, "success", trip)
}

// ListBatches handles GET /api/trips/{id}/batches with quoted prices
func (h *TripHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.ListBatches(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "list batches")
		return
	}

	utils.ResponseSuccess(w, "success", batches)
}

// ==================== STAFF ====================

// ListAllTrips handles GET /api/admin/trips, including inactive trips
func (h *TripHandler) ListAllTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.service.ListAllTrips(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list all trips")
		return
	}

	utils.ResponseSuccess(w, "success", trips)
}

// CreateTrip handles POST /api/admin/trips
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req request.TripRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	trip, err := h.service.CreateTrip(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create trip")
		return
	}

	utils.ResponseCreated(w, "Trip created", trip)
}

// UpdateTrip handles PUT /api/admin/trips/{id}
func (h *TripHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	var req request.TripUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	trip, err := h.service.UpdateTrip(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update trip")
		return
	}

	utils.ResponseSuccess(w, "Trip updated", trip)
}

// ToggleBookingLive handles PUT /api/admin/trips/{id}/booking-live
func (h *TripHandler) ToggleBookingLive(w http.ResponseWriter, r *http.Request) {
	var req request.BookingLiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	trip, err := h.service.ToggleBookingLive(r.Context(), chi.URLParam(r, "id"), *req.BookingLive)
	if err != nil {
		handleServiceError(w, h.log, err, "toggle booking live")
		return
	}

	utils.ResponseSuccess(w, "Booking status updated", trip)
}

// CreateBatch handles POST /api/admin/trips/{id}/batches
func (h *TripHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req request.BatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	batch, err := h.service.CreateBatch(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create batch")
		return
	}

	utils.ResponseCreated(w, "Batch created", batch)
}

// UpdateBatch handles PUT /api/admin/batches/{id}
func (h *TripHandler) UpdateBatch(w http.ResponseWriter, r *http.Request) {
	var req request.BatchUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	batch, err := h.service.UpdateBatch(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update batch")
		return
	}

	utils.ResponseSuccess(w, "Batch updated", batch)
}

// DeleteBatch handles DELETE /api/admin/batches/{id}
func (h *TripHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBatch(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete batch")
		return
	}

	utils.ResponseSuccess(w, "Batch deleted", nil)
}
