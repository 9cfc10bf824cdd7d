package usecase

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/availability"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/pricing"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TripService interface {
	// Public
	ListTrips(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TripResponse], error)
	GetTrip(ctx context.Context, id string) (*response.TripDetailResponse, error)
	ListBatches(ctx context.Context, tripID string) ([]response.BatchResponse, error)

	// Staff
	ListAllTrips(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TripResponse], error)
	CreateTrip(ctx context.Context, req *request.TripRequest) (*response.TripResponse, error)
	UpdateTrip(ctx context.Context, id string, req *request.TripUpdateRequest) (*response.TripResponse, error)
	ToggleBookingLive(ctx context.Context, id string, live bool) (*response.TripDetailResponse, error)
	CreateBatch(ctx context.Context, tripID string, req *request.BatchRequest) (*response.BatchResponse, error)
	UpdateBatch(ctx context.Context, batchID string, req *request.BatchUpdateRequest) (*response.BatchResponse, error)
	DeleteBatch(ctx context.Context, batchID string) error
}

type tripService struct {
	repo *repository.Repository
	loc  *time.Location
	now  func() time.Time
	log  *zap.Logger
}

func NewTripService(repo *repository.Repository, loc *time.Location, now func() time.Time, log *zap.Logger) TripService {
	if loc == nil {
		loc = time.UTC
	}
	return &tripService{
		repo: repo,
		loc:  loc,
		now:  now,
		log:  log.With(zap.String("service", "trip")),
	}
}

func (s *tripService) ListTrips(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TripResponse], error) {
	return s.list(ctx, true, req)
}

func (s *tripService) ListAllTrips(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TripResponse], error) {
	return s.list(ctx, false, req)
}

func (s *tripService) list(ctx context.Context, activeOnly bool, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TripResponse], error) {
	trips, err := s.repo.Trip.FindAll(ctx, activeOnly, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get trips", zap.Error(err), zap.Int("page", req.Page))
		return nil, fmt.Errorf("failed to get trips")
	}

	total, err := s.repo.Trip.Count(ctx, activeOnly)
	if err != nil {
		s.log.Error("Failed to count trips", zap.Error(err))
		return nil, fmt.Errorf("failed to count trips")
	}

	items := make([]response.TripResponse, len(trips))
	for i, trip := range trips {
		items[i] = response.TripToResponse(trip)
	}

	return response.NewPaginatedResponse(items, req.CurrentPage(), req.Limit(), total), nil
}

func (s *tripService) GetTrip(ctx context.Context, id string) (*response.TripDetailResponse, error) {
	trip, batches, err := s.loadTrip(ctx, id)
	if err != nil {
		return nil, err
	}

	return &response.TripDetailResponse{
		TripResponse: response.TripToResponse(trip),
		Availability: availability.Summarize(trip, batches),
	}, nil
}

// ListBatches returns a trip's batches with the price a customer would pay
// right now for each of them.
func (s *tripService) ListBatches(ctx context.Context, tripID string) ([]response.BatchResponse, error) {
	trip, batches, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	items := make([]response.BatchResponse, len(batches))
	for i, batch := range batches {
		items[i] = response.BatchToResponse(batch, s.quote(trip, batch, now))
	}
	return items, nil
}

func (s *tripService) CreateTrip(ctx context.Context, req *request.TripRequest) (*response.TripResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create trip validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := s.now()
	trip := &entity.Trip{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Description:  req.Description,
		BasePrice:    req.BasePrice,
		CityPrices:   req.CityPrices,
		Capacity:     req.Capacity,
		DurationDays: req.DurationDays,
		Inclusions:   req.Inclusions,
		Exclusions:   req.Exclusions,
		// trips start closed; going live needs a sellable batch
		BookingLive: false,
		IsActive:    true,
	}

	if err := s.repo.Trip.Create(ctx, trip); err != nil {
		s.log.Error("Failed to create trip", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("failed to create trip")
	}

	s.log.Info("Trip created", zap.String("trip_id", trip.ID.String()), zap.String("name", trip.Name))
	resp := response.TripToResponse(trip)
	return &resp, nil
}

func (s *tripService) UpdateTrip(ctx context.Context, id string, req *request.TripUpdateRequest) (*response.TripResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update trip validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	trip, err := s.findTrip(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		trip.Name = *req.Name
	}
	if req.Description != nil {
		trip.Description = *req.Description
	}
	if req.BasePrice != nil {
		trip.BasePrice = *req.BasePrice
	}
	if req.CityPrices != nil {
		trip.CityPrices = req.CityPrices
	}
	if req.Capacity != nil {
		trip.Capacity = *req.Capacity
	}
	if req.DurationDays != nil {
		trip.DurationDays = *req.DurationDays
	}
	if req.Inclusions != nil {
		trip.Inclusions = req.Inclusions
	}
	if req.Exclusions != nil {
		trip.Exclusions = req.Exclusions
	}
	if req.IsActive != nil {
		trip.IsActive = *req.IsActive
		if !trip.IsActive {
			trip.BookingLive = false
		}
	}
	trip.UpdatedAt = s.now()

	if err := s.repo.Trip.Update(ctx, trip); err != nil {
		s.log.Error("Failed to update trip", zap.Error(err), zap.String("trip_id", id))
		return nil, fmt.Errorf("failed to update trip")
	}

	resp := response.TripToResponse(trip)
	return &resp, nil
}

// ToggleBookingLive opens or closes a trip for sale. Opening requires at
// least one active batch with a free seat; closing is always allowed.
func (s *tripService) ToggleBookingLive(ctx context.Context, id string, live bool) (*response.TripDetailResponse, error) {
	trip, batches, err := s.loadTrip(ctx, id)
	if err != nil {
		return nil, err
	}

	if live {
		switch availability.CanGoLive(trip.ID, batches) {
		case availability.ReasonNoActiveBatches:
			return nil, ErrNoActiveBatches
		case availability.ReasonNoAvailableSeats:
			return nil, ErrNoAvailableSeats
		}
	}

	if err := s.repo.Trip.SetBookingLive(ctx, trip.ID, live); err != nil {
		s.log.Error("Failed to toggle booking live", zap.Error(err), zap.String("trip_id", id))
		return nil, fmt.Errorf("toggle booking live: %w", err)
	}
	trip.BookingLive = live

	s.log.Info("Trip booking toggled", zap.String("trip_id", id), zap.Bool("booking_live", live))
	return &response.TripDetailResponse{
		TripResponse: response.TripToResponse(trip),
		Availability: availability.Summarize(trip, batches),
	}, nil
}

func (s *tripService) CreateBatch(ctx context.Context, tripID string, req *request.BatchRequest) (*response.BatchResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create batch validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	trip, err := s.findTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	start, end, err := s.parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	status := entity.BatchStatusUpcoming
	if req.Status != "" {
		status = entity.BatchStatus(req.Status)
	}

	now := s.now()
	batch := &entity.Batch{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		TripID:    trip.ID,
		StartDate: start,
		EndDate:   end,
		BatchSize: req.BatchSize,
		Status:    status,
	}

	if err := s.repo.Batch.Create(ctx, batch); err != nil {
		s.log.Error("Failed to create batch", zap.Error(err), zap.String("trip_id", tripID))
		return nil, fmt.Errorf("failed to create batch")
	}

	s.log.Info("Batch created",
		zap.String("batch_id", batch.ID.String()),
		zap.String("trip_id", tripID),
		zap.String("start_date", req.StartDate),
	)
	resp := response.BatchToResponse(batch, s.quote(trip, batch, now.In(s.loc)))
	return &resp, nil
}

func (s *tripService) UpdateBatch(ctx context.Context, batchID string, req *request.BatchUpdateRequest) (*response.BatchResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update batch validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	batch, err := s.findBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	startRaw := batch.StartDate.Format(time.DateOnly)
	endRaw := batch.EndDate.Format(time.DateOnly)
	if req.StartDate != nil {
		startRaw = *req.StartDate
	}
	if req.EndDate != nil {
		endRaw = *req.EndDate
	}
	start, end, err := s.parseRange(startRaw, endRaw)
	if err != nil {
		return nil, err
	}
	batch.StartDate, batch.EndDate = start, end

	if req.BatchSize != nil {
		if *req.BatchSize < batch.SeatsBooked {
			return nil, fmt.Errorf("validation failed: batch_size: cannot be below %d seats already booked", batch.SeatsBooked)
		}
		batch.BatchSize = *req.BatchSize
	}
	if req.Status != nil {
		batch.Status = entity.BatchStatus(*req.Status)
	}
	batch.UpdatedAt = s.now()

	if err := s.repo.Batch.Update(ctx, batch); err != nil {
		s.log.Error("Failed to update batch", zap.Error(err), zap.String("batch_id", batchID))
		return nil, fmt.Errorf("failed to update batch")
	}

	trip, err := s.repo.Trip.FindByID(ctx, batch.TripID)
	if err != nil || trip == nil {
		s.log.Warn("Trip missing for batch", zap.String("batch_id", batchID), zap.Error(err))
		resp := response.BatchToResponse(batch, pricing.Result{})
		return &resp, nil
	}

	resp := response.BatchToResponse(batch, s.quote(trip, batch, s.now().In(s.loc)))
	return &resp, nil
}

func (s *tripService) DeleteBatch(ctx context.Context, batchID string) error {
	batch, err := s.findBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.SeatsBooked > 0 {
		return fmt.Errorf("%w: batch has %d confirmed seats", ErrForbidden, batch.SeatsBooked)
	}

	if err := s.repo.Batch.Delete(ctx, batch.ID); err != nil {
		s.log.Error("Failed to delete batch", zap.Error(err), zap.String("batch_id", batchID))
		return fmt.Errorf("failed to delete batch")
	}

	s.log.Info("Batch deleted", zap.String("batch_id", batchID))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *tripService) findTrip(ctx context.Context, id string) (*entity.Trip, error) {
	tripID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid trip ID format %s: %w", id, err)
	}

	trip, err := s.repo.Trip.FindByID(ctx, tripID)
	if err != nil {
		s.log.Error("Failed to find trip", zap.Error(err), zap.String("trip_id", id))
		return nil, fmt.Errorf("failed to get trip")
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	return trip, nil
}

func (s *tripService) loadTrip(ctx context.Context, id string) (*entity.Trip, []*entity.Batch, error) {
	trip, err := s.findTrip(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	batches, err := s.repo.Batch.FindByTripID(ctx, trip.ID)
	if err != nil {
		s.log.Error("Failed to load batches", zap.Error(err), zap.String("trip_id", id))
		return nil, nil, fmt.Errorf("failed to get batches")
	}
	return trip, batches, nil
}

func (s *tripService) findBatch(ctx context.Context, id string) (*entity.Batch, error) {
	batchID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid batch ID format %s: %w", id, err)
	}

	batch, err := s.repo.Batch.FindByID(ctx, batchID)
	if err != nil {
		s.log.Error("Failed to find batch", zap.Error(err), zap.String("batch_id", id))
		return nil, fmt.Errorf("failed to get batch")
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}
	return batch, nil
}

func (s *tripService) parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(time.DateOnly, startRaw, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("validation failed: start_date: %v", err)
	}
	end, err := time.ParseInLocation(time.DateOnly, endRaw, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("validation failed: end_date: %v", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("validation failed: end_date: must not be before start_date")
	}
	return start, end, nil
}

func (s *tripService) quote(trip *entity.Trip, batch *entity.Batch, now time.Time) pricing.Result {
	return pricing.Compute(pricing.Input{
		BasePrice:      trip.BasePrice,
		BatchSize:      batch.BatchSize,
		AvailableSeats: batch.AvailableSeats(),
		StartDate:      batch.StartDate,
	}, now)
}
