package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Trip      *TripHandler
	Booking   *BookingHandler
	Wallet    *WalletHandler
	Review    *ReviewHandler
	Broadcast *BroadcastHandler
	Job       *JobHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(service.Auth, log),
		User:      NewUserHandler(service.User, log),
		Trip:      NewTripHandler(service.Trip, log),
		Booking:   NewBookingHandler(service.Booking, log),
		Wallet:    NewWalletHandler(service.Wallet, log),
		Review:    NewReviewHandler(service.Review, log),
		Broadcast: NewBroadcastHandler(service.Broadcast, log),
		Job:       NewJobHandler(service.Job, log),
	}
}

// ==================== HELPERS ====================

// decodeAndValidate reads a JSON body into dst and runs struct validation,
// writing a 400 and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
	}
	return userID, ok
}

func paginationFromQuery(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	perPage := utils.ParseInt(query.Get("per_page"), request.DefaultPerPage)
	if perPage > request.MaxPerPage {
		perPage = request.MaxPerPage
	}
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: perPage,
	}
}

var (
	notFoundErrors = []error{
		usecase.ErrUserNotFound, usecase.ErrTripNotFound, usecase.ErrBatchNotFound,
		usecase.ErrBookingNotFound, usecase.ErrReviewNotFound, usecase.ErrUnknownJob,
	}
	conflictErrors = []error{
		usecase.ErrEmailTaken, usecase.ErrUsernameTaken, usecase.ErrAlreadyReviewed,
		usecase.ErrInvalidTransition,
	}
	ruleErrors = []error{
		usecase.ErrTripNotBookable, usecase.ErrNoActiveBatches, usecase.ErrNoAvailableSeats,
		usecase.ErrBatchNotPurchasable, usecase.ErrBatchFull, usecase.ErrOverpayment,
		usecase.ErrInsufficientBalance, usecase.ErrWalletFrozen, usecase.ErrInvalidAmount,
		usecase.ErrCreditExceedsTotal, usecase.ErrInvalidReferralCode, usecase.ErrReviewNotAllowed,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleServiceError maps service errors onto HTTP statuses. Anything it
// does not recognise is logged and hidden behind a 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	errMsg := err.Error()

	switch {
	case isAny(err, notFoundErrors):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, errMsg)

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation+" failed - invalid credentials", zap.Error(err))
		utils.ResponseUnauthorized(w, errMsg)

	case errors.Is(err, usecase.ErrAccountInactive), errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, errMsg)

	case isAny(err, conflictErrors):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, errMsg)

	case isAny(err, ruleErrors):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseUnprocessable(w, errMsg, nil)

	case strings.HasPrefix(errMsg, "validation failed"), strings.HasPrefix(errMsg, "invalid "):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
