package response

import (
	"time"

	"travel-booking/internal/availability"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/pricing"
)

type TripResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	BasePrice    int64            `json:"base_price"`
	CityPrices   map[string]int64 `json:"city_prices,omitempty"`
	Capacity     int              `json:"capacity"`
	DurationDays int              `json:"duration_days"`
	Inclusions   []string         `json:"inclusions"`
	Exclusions   []string         `json:"exclusions"`
	BookingLive  bool             `json:"booking_live"`
	IsActive     bool             `json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type TripDetailResponse struct {
	TripResponse
	Availability availability.Summary `json:"availability"`
}

type BatchResponse struct {
	ID             string             `json:"id"`
	TripID         string             `json:"trip_id"`
	StartDate      string             `json:"start_date"`
	EndDate        string             `json:"end_date"`
	BatchSize      int                `json:"batch_size"`
	SeatsBooked    int                `json:"seats_booked"`
	AvailableSeats int                `json:"available_seats"`
	Status         entity.BatchStatus `json:"status"`
	Pricing        pricing.Result     `json:"pricing"`
}

// Helper converters
func TripToResponse(trip *entity.Trip) TripResponse {
	return TripResponse{
		ID:           trip.ID.String(),
		Name:         trip.Name,
		Description:  trip.Description,
		BasePrice:    trip.BasePrice,
		CityPrices:   trip.CityPrices,
		Capacity:     trip.Capacity,
		DurationDays: trip.DurationDays,
		Inclusions:   trip.Inclusions,
		Exclusions:   trip.Exclusions,
		BookingLive:  trip.BookingLive,
		IsActive:     trip.IsActive,
		CreatedAt:    trip.CreatedAt,
		UpdatedAt:    trip.UpdatedAt,
	}
}

func BatchToResponse(batch *entity.Batch, price pricing.Result) BatchResponse {
	return BatchResponse{
		ID:             batch.ID.String(),
		TripID:         batch.TripID.String(),
		StartDate:      batch.StartDate.Format(time.DateOnly),
		EndDate:        batch.EndDate.Format(time.DateOnly),
		BatchSize:      batch.BatchSize,
		SeatsBooked:    batch.SeatsBooked,
		AvailableSeats: batch.AvailableSeats(),
		Status:         batch.Status,
		Pricing:        price,
	}
}
