// Package availability derives trip-level seat availability and bookability
// from a trip's batches. Batch rows are the only write target; the values
// here are read aggregates for display and gating.
package availability

import (
	"travel-booking/internal/data/entity"

	"github.com/google/uuid"
)

// Reason explains why a trip is not bookable.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotLive          Reason = "booking_not_live"
	ReasonNoActiveBatches  Reason = "no_active_batches"
	ReasonNoAvailableSeats Reason = "no_available_seats"
)

type Summary struct {
	TripID           uuid.UUID `json:"trip_id"`
	BookingLive      bool      `json:"booking_live"`
	HasActiveBatches bool      `json:"has_active_batches"`
	AvailableSeats   int       `json:"available_seats"`
	Bookable         bool      `json:"is_bookable"`
	Reason           Reason    `json:"reason,omitempty"`
}

// AvailableSeats sums free seats over the trip's active batches.
func AvailableSeats(tripID uuid.UUID, batches []*entity.Batch) int {
	total := 0
	for _, b := range batches {
		if b == nil || b.TripID != tripID || b.Status != entity.BatchStatusActive {
			continue
		}
		total += b.AvailableSeats()
	}
	return total
}

func HasActiveBatches(tripID uuid.UUID, batches []*entity.Batch) bool {
	for _, b := range batches {
		if b != nil && b.TripID == tripID && b.Status == entity.BatchStatusActive {
			return true
		}
	}
	return false
}

// IsBookable requires the live flag, an active batch and a free seat.
func IsBookable(trip *entity.Trip, batches []*entity.Batch) bool {
	return Summarize(trip, batches).Bookable
}

// Summarize evaluates every gate once. Reason reports the first failing one.
func Summarize(trip *entity.Trip, batches []*entity.Batch) Summary {
	if trip == nil {
		return Summary{Reason: ReasonNotLive}
	}

	s := Summary{
		TripID:           trip.ID,
		BookingLive:      trip.BookingLive,
		HasActiveBatches: HasActiveBatches(trip.ID, batches),
		AvailableSeats:   AvailableSeats(trip.ID, batches),
	}

	switch {
	case !s.BookingLive:
		s.Reason = ReasonNotLive
	case !s.HasActiveBatches:
		s.Reason = ReasonNoActiveBatches
	case s.AvailableSeats <= 0:
		s.Reason = ReasonNoAvailableSeats
	default:
		s.Bookable = true
	}
	return s
}

// CanGoLive checks what turning booking_live on requires, ignoring the
// current value of the flag.
func CanGoLive(tripID uuid.UUID, batches []*entity.Batch) Reason {
	if !HasActiveBatches(tripID, batches) {
		return ReasonNoActiveBatches
	}
	if AvailableSeats(tripID, batches) <= 0 {
		return ReasonNoAvailableSeats
	}
	return ReasonNone
}
