package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"

	"go.uber.org/zap"
)

func TestCreateReviewRequiresCompletedTrip(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := NewReviewService(store.repository(), time.UTC, fixedClock(testNow), zap.NewNop())
	user := store.addUser(t, "anil", true)
	trip := store.addTrip(t, 10000, true)
	upcoming := store.addBatch(t, trip.ID, testNow.AddDate(0, 0, 10), 20, 1, entity.BatchStatusActive)
	store.addBooking(t, user, upcoming, 1, 10000, entity.BookingStatusConfirmed)

	req := &request.CreateReviewRequest{TripID: trip.ID.String(), Rating: 5, Comment: strPtr("Loved the high passes")}
	if _, err := service.CreateReview(context.Background(), user.ID.String(), req); !errors.Is(err, ErrReviewNotAllowed) {
		t.Fatalf("expected ErrReviewNotAllowed before travelling, got %v", err)
	}

	past := store.addBatch(t, trip.ID, testNow.AddDate(0, 0, -20), 20, 1, entity.BatchStatusClosed)
	booking := store.addBooking(t, user, past, 1, 10000, entity.BookingStatusConfirmed)

	resp, err := service.CreateReview(context.Background(), user.ID.String(), req)
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if resp.TripName != trip.Name || resp.Username != "anil" {
		t.Fatalf("unexpected review response %+v", resp)
	}
	if review := store.reviews[mustParseID(t, resp.ID)]; review.BookingID != booking.ID {
		t.Fatalf("expected review tied to booking %s, got %s", booking.ID, review.BookingID)
	}

	if _, err := service.CreateReview(context.Background(), user.ID.String(), req); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}

	stats, err := service.GetTripReviewStats(context.Background(), trip.ID.String())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if *stats != (response.TripReviewStats{AverageRating: 5, ReviewCount: 1}) {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestDeleteReviewOnlyByAuthor(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	service := NewReviewService(store.repository(), time.UTC, fixedClock(testNow), zap.NewNop())
	author := store.addUser(t, "anil", true)
	other := store.addUser(t, "bina", true)
	trip := store.addTrip(t, 10000, true)
	review := &entity.Review{
		BaseSimple: entity.BaseSimple{ID: mustParseID(t, "6f1c1a40-5f0e-4f8e-9d55-3b1c9a0b7e21"), CreatedAt: testNow},
		UserID:     author.ID,
		TripID:     trip.ID,
		Rating:     4,
	}
	store.reviews[review.ID] = review

	if err := service.DeleteReview(context.Background(), review.ID.String(), other.ID.String()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := service.DeleteReview(context.Background(), review.ID.String(), author.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.reviews[review.ID]; ok {
		t.Fatalf("expected review removed")
	}
}
