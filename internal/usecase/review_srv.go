package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	// Public endpoints
	GetTripReviews(ctx context.Context, tripID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetTripReviewStats(ctx context.Context, tripID string) (*response.TripReviewStats, error)

	// Customer (butuh auth)
	CreateReview(ctx context.Context, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	GetUserReviews(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	DeleteReview(ctx context.Context, reviewID, userID string) error
}

type reviewService struct {
	repo *repository.Repository
	loc  *time.Location
	now  func() time.Time
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, loc *time.Location, now func() time.Time, log *zap.Logger) ReviewService {
	if loc == nil {
		loc = time.UTC
	}
	return &reviewService{
		repo: repo,
		loc:  loc,
		now:  now,
		log:  log.With(zap.String("service", "review")),
	}
}

// CreateReview lets a traveler rate a trip once, after a confirmed booking
// on it has ended.
func (s *reviewService) CreateReview(ctx context.Context, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// Parse IDs
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}
	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		return nil, fmt.Errorf("invalid trip ID format %s: %w", req.TripID, err)
	}

	// Check if trip exists
	trip, err := s.repo.Trip.FindByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("find trip: %w", err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	// One review per traveler per trip
	existing, err := s.repo.Review.FindByUserAndTrip(ctx, userUUID, tripID)
	if err != nil {
		s.log.Error("Failed to check existing review", zap.Error(err))
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyReviewed
	}

	// Must have travelled
	today := truncateDay(s.now().In(s.loc))
	booking, err := s.repo.Booking.FindReviewable(ctx, userUUID, tripID, today)
	if err != nil {
		s.log.Error("Failed to find reviewable booking", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("find reviewable booking: %w", err)
	}
	if booking == nil {
		return nil, ErrReviewNotAllowed
	}

	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: s.now(),
		},
		UserID:    userUUID,
		TripID:    tripID,
		BookingID: booking.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("trip_id", req.TripID),
		)
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("trip_id", req.TripID),
		zap.Int("rating", req.Rating),
	)

	resp := response.ReviewToResponse(review, s.username(ctx, userUUID), trip.Name)
	return &resp, nil
}

func (s *reviewService) GetTripReviews(ctx context.Context, tripID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	tripUUID, err := uuid.Parse(tripID)
	if err != nil {
		return nil, fmt.Errorf("invalid trip ID format %s: %w", tripID, err)
	}

	reviews, err := s.repo.Review.FindByTripID(ctx, tripUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get trip reviews",
			zap.Error(err),
			zap.String("trip_id", tripID),
			zap.Int("page", req.Page),
		)
		return nil, fmt.Errorf("get trip reviews: %w", err)
	}

	total, err := s.repo.Review.CountByTripID(ctx, tripUUID)
	if err != nil {
		return nil, fmt.Errorf("count trip reviews: %w", err)
	}

	tripName := ""
	if trip, err := s.repo.Trip.FindByID(ctx, tripUUID); err == nil && trip != nil {
		tripName = trip.Name
	}

	items := make([]response.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, response.ReviewToResponse(review, s.username(ctx, review.UserID), tripName))
	}

	return response.NewPaginatedResponse(items, req.CurrentPage(), req.Limit(), total), nil
}

func (s *reviewService) GetTripReviewStats(ctx context.Context, tripID string) (*response.TripReviewStats, error) {
	tripUUID, err := uuid.Parse(tripID)
	if err != nil {
		return nil, fmt.Errorf("invalid trip ID format %s: %w", tripID, err)
	}

	avg, count, err := s.repo.Review.GetTripReviewStats(ctx, tripUUID)
	if err != nil {
		s.log.Error("Failed to get review stats", zap.Error(err), zap.String("trip_id", tripID))
		return nil, fmt.Errorf("get review stats: %w", err)
	}

	return &response.TripReviewStats{
		AverageRating: math.Round(avg*10) / 10,
		ReviewCount:   count,
	}, nil
}

func (s *reviewService) GetUserReviews(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	reviews, err := s.repo.Review.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user reviews", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("get user reviews: %w", err)
	}

	total, err := s.repo.Review.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count user reviews: %w", err)
	}

	username := s.username(ctx, userUUID)
	names := make(map[uuid.UUID]string)
	items := make([]response.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		name, ok := names[review.TripID]
		if !ok {
			if trip, err := s.repo.Trip.FindByID(ctx, review.TripID); err == nil && trip != nil {
				name = trip.Name
			}
			names[review.TripID] = name
		}
		items = append(items, response.ReviewToResponse(review, username, name))
	}

	return response.NewPaginatedResponse(items, req.CurrentPage(), req.Limit(), total), nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	reviewUUID, err := uuid.Parse(reviewID)
	if err != nil {
		return fmt.Errorf("invalid review ID format %s: %w", reviewID, err)
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	review, err := s.repo.Review.FindByID(ctx, reviewUUID)
	if err != nil {
		return fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if review.UserID != userUUID {
		return fmt.Errorf("%w: review belongs to another user", ErrForbidden)
	}

	if err := s.repo.Review.Delete(ctx, reviewUUID); err != nil {
		s.log.Error("Failed to delete review", zap.Error(err), zap.String("review_id", reviewID))
		return fmt.Errorf("delete review: %w", err)
	}

	s.log.Info("Review deleted", zap.String("review_id", reviewID), zap.String("user_id", userID))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *reviewService) username(ctx context.Context, userID uuid.UUID) string {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.Username
}

// truncateDay returns midnight of t's calendar date in t's location.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
