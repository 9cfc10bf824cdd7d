package availability

import (
	"testing"

	"travel-booking/internal/data/entity"

	"github.com/google/uuid"
)

func batch(tripID uuid.UUID, status entity.BatchStatus, size, booked int) *entity.Batch {
	b := &entity.Batch{TripID: tripID, Status: status, BatchSize: size, SeatsBooked: booked}
	b.ID = uuid.New()
	return b
}

func TestAvailableSeats(t *testing.T) {
	t.Parallel()
	tripID := uuid.New()
	other := uuid.New()
	batches := []*entity.Batch{
		batch(tripID, entity.BatchStatusActive, 20, 5),
		batch(tripID, entity.BatchStatusActive, 10, 12), // overbooked counts as zero
		batch(tripID, entity.BatchStatusUpcoming, 30, 0),
		batch(tripID, entity.BatchStatusClosed, 30, 0),
		batch(other, entity.BatchStatusActive, 50, 0),
		nil,
	}
	if got := AvailableSeats(tripID, batches); got != 15 {
		t.Fatalf("expected 15 seats, got %d", got)
	}
	if got := AvailableSeats(uuid.New(), batches); got != 0 {
		t.Fatalf("expected 0 seats for unknown trip, got %d", got)
	}
}

func TestIsBookable(t *testing.T) {
	t.Parallel()
	tripID := uuid.New()
	cases := []struct {
		name       string
		live       bool
		batches    []*entity.Batch
		want       bool
		wantReason Reason
	}{
		{
			name:       "not live despite seats",
			live:       false,
			batches:    []*entity.Batch{batch(tripID, entity.BatchStatusActive, 20, 0)},
			wantReason: ReasonNotLive,
		},
		{
			name:       "live but no active batch",
			live:       true,
			batches:    []*entity.Batch{batch(tripID, entity.BatchStatusUpcoming, 20, 0), batch(tripID, entity.BatchStatusClosed, 20, 0)},
			wantReason: ReasonNoActiveBatches,
		},
		{
			name:       "live with active batch but full",
			live:       true,
			batches:    []*entity.Batch{batch(tripID, entity.BatchStatusActive, 20, 20)},
			wantReason: ReasonNoAvailableSeats,
		},
		{
			name:    "all three hold",
			live:    true,
			batches: []*entity.Batch{batch(tripID, entity.BatchStatusActive, 20, 19)},
			want:    true,
		},
		{
			name:       "no batches",
			live:       true,
			wantReason: ReasonNoActiveBatches,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			trip := &entity.Trip{BookingLive: tc.live}
			trip.ID = tripID
			if got := IsBookable(trip, tc.batches); got != tc.want {
				t.Fatalf("expected bookable=%v, got %v", tc.want, got)
			}
			if got := Summarize(trip, tc.batches).Reason; got != tc.wantReason {
				t.Fatalf("expected reason %q, got %q", tc.wantReason, got)
			}
		})
	}
}

func TestCanGoLive(t *testing.T) {
	t.Parallel()
	tripID := uuid.New()
	if got := CanGoLive(tripID, nil); got != ReasonNoActiveBatches {
		t.Fatalf("expected %q, got %q", ReasonNoActiveBatches, got)
	}
	if got := CanGoLive(tripID, []*entity.Batch{batch(tripID, entity.BatchStatusActive, 5, 5)}); got != ReasonNoAvailableSeats {
		t.Fatalf("expected %q, got %q", ReasonNoAvailableSeats, got)
	}
	if got := CanGoLive(tripID, []*entity.Batch{batch(tripID, entity.BatchStatusActive, 5, 4)}); got != ReasonNone {
		t.Fatalf("expected no reason, got %q", got)
	}
}

func TestSummarizeNilTrip(t *testing.T) {
	t.Parallel()
	if IsBookable(nil, nil) {
		t.Fatal("expected nil trip to be unbookable")
	}
}
