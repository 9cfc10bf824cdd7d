package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travel-booking/internal/availability"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/pricing"
	"travel-booking/pkg/notify"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Customer (butuh auth)
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	SubmitPaymentProof(ctx context.Context, userID, bookingID string, req *request.PaymentProofRequest) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBooking(ctx context.Context, viewerID, bookingID string, viewAll bool) (*response.BookingDetailResponse, error)

	// Staff
	ListBookings(ctx context.Context, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	VerifyAdvancePayment(ctx context.Context, staffID, bookingID string, req *request.VerifyPaymentRequest) (*response.BookingResponse, error)
	RecordBalancePayment(ctx context.Context, staffID, bookingID string, req *request.VerifyPaymentRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, staffID, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error)

	// Maintenance
	ExpireAbandoned(ctx context.Context) ([]entity.ExpiredBooking, error)
}

type bookingService struct {
	repo      *repository.Repository
	ledger    *ledger
	messenger *messenger
	cfg       *utils.Config
	now       func() time.Time
	log       *zap.Logger
}

func NewBookingService(repo *repository.Repository, cfg *utils.Config, msg *messenger, now func() time.Time, log *zap.Logger) BookingService {
	log = log.With(zap.String("service", "booking"))
	return &bookingService{
		repo:      repo,
		ledger:    &ledger{cfg: cfg.Wallet, now: now, log: log},
		messenger: msg,
		cfg:       cfg,
		now:       now,
		log:       log,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
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
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return nil, fmt.Errorf("invalid batch ID format %s: %w", req.BatchID, err)
	}

	user, err := s.repo.User.FindByID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// Trip must be bookable right now
	trip, err := s.repo.Trip.FindByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("find trip: %w", err)
	}
	if trip == nil || !trip.IsActive {
		return nil, ErrTripNotFound
	}

	batches, err := s.repo.Batch.FindByTripID(ctx, tripID)
	if err != nil {
		s.log.Error("Failed to load batches", zap.Error(err), zap.String("trip_id", req.TripID))
		return nil, fmt.Errorf("load batches: %w", err)
	}
	if summary := availability.Summarize(trip, batches); !summary.Bookable {
		return nil, fmt.Errorf("%w: %s", ErrTripNotBookable, summary.Reason)
	}

	var batch *entity.Batch
	for _, b := range batches {
		if b.ID == batchID {
			batch = b
			break
		}
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}
	if !batch.Purchasable() {
		return nil, ErrBatchNotPurchasable
	}
	if batch.AvailableSeats() < req.Travelers {
		return nil, fmt.Errorf("%w: %d left", ErrBatchFull, batch.AvailableSeats())
	}

	// Price is recomputed at submission, never taken from the client
	now := s.now()
	city := ""
	if req.DepartureCity != nil {
		city = strings.TrimSpace(*req.DepartureCity)
	}
	price := pricing.Compute(pricing.Input{
		BasePrice:      trip.PriceFor(city),
		BatchSize:      batch.BatchSize,
		AvailableSeats: batch.AvailableSeats(),
		StartDate:      batch.StartDate,
	}, now.In(s.cfg.App.Location()))
	gross := price.EffectivePrice * int64(req.Travelers)

	referralCode, err := s.resolveReferralCode(ctx, user, req.ReferralCode)
	if err != nil {
		return nil, err
	}

	if req.WalletCredit > gross {
		return nil, ErrCreditExceedsTotal
	}

	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingCode:   utils.GenerateBookingCode(now.In(s.cfg.App.Location())),
		UserID:        userUUID,
		TripID:        tripID,
		BatchID:       &batchID,
		Travelers:     req.Travelers,
		PricePerSeat:  price.EffectivePrice,
		TotalAmount:   gross,
		PaymentStatus: entity.PaymentStatusPending,
		BookingStatus: entity.BookingStatusInitiated,
		ReferralCode:  referralCode,
	}
	if city != "" {
		booking.DepartureCity = &city
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if req.WalletCredit > 0 {
			// check before writing anything so a refusal leaves no booking behind
			wallet, err := tx.Wallet.FindByUserIDForUpdate(ctx, userUUID)
			if err != nil {
				return err
			}
			if err := s.ledger.checkDebit(wallet, req.WalletCredit); err != nil {
				return err
			}
		}

		if err := tx.Booking.Create(ctx, booking); err != nil {
			return err
		}

		if req.WalletCredit > 0 {
			return s.ledger.applyToBooking(ctx, tx, booking, req.WalletCredit)
		}
		return nil
	})
	if err != nil {
		if ledgerPrecondition(err) {
			return nil, err
		}
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("batch_id", req.BatchID),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_code", booking.BookingCode),
		zap.String("user_id", userID),
		zap.Int("travelers", booking.Travelers),
		zap.Int64("price_per_seat", booking.PricePerSeat),
		zap.Int("adjustment_percent", price.AdjustmentPercent),
		zap.Int64("wallet_credit", booking.WalletCreditApplied),
		zap.Int64("total_amount", booking.TotalAmount),
	)

	resp := response.BookingToResponse(booking, trip.Name)
	return &resp, nil
}

// resolveReferralCode validates a code given at checkout, falling back to
// the code the user signed up with.
func (s *bookingService) resolveReferralCode(ctx context.Context, user *entity.User, code *string) (*string, error) {
	if code == nil || strings.TrimSpace(*code) == "" {
		return user.ReferredBy, nil
	}

	normalized := strings.ToUpper(strings.TrimSpace(*code))
	rc, err := s.repo.Referral.FindByCode(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("find referral code: %w", err)
	}
	if rc == nil || rc.UserID == user.ID {
		return nil, ErrInvalidReferralCode
	}
	return &normalized, nil
}

func (s *bookingService) SubmitPaymentProof(ctx context.Context, userID, bookingID string, req *request.PaymentProofRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}
	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	var booking *entity.Booking
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		booking, err = tx.Booking.FindByIDForUpdate(ctx, bookingUUID)
		if err != nil {
			return err
		}
		if booking == nil || booking.UserID != userUUID {
			return ErrBookingNotFound
		}

		switch booking.BookingStatus {
		case entity.BookingStatusInitiated:
			booking.BookingStatus = entity.BookingStatusPending
		case entity.BookingStatusPending:
			// resubmission only replaces the reference
		default:
			return fmt.Errorf("%w: cannot submit payment for %s booking", ErrInvalidTransition, booking.BookingStatus)
		}

		ref := strings.TrimSpace(req.UPIReference)
		booking.UPIReference = &ref
		booking.UpdatedAt = s.now()
		return tx.Booking.Update(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Payment proof submitted",
		zap.String("booking_id", bookingID),
		zap.String("upi_reference", req.UPIReference),
	)
	resp := response.BookingToResponse(booking, "")
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("get user bookings: %w", err)
	}
	total, err := s.repo.Booking.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, bookings), req.CurrentPage(), req.Limit(), total), nil
}

func (s *bookingService) GetBooking(ctx context.Context, viewerID, bookingID string, viewAll bool) (*response.BookingDetailResponse, error) {
	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingUUID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !viewAll && booking.UserID.String() != viewerID {
		// do not reveal other customers' bookings
		return nil, ErrBookingNotFound
	}

	payments, err := s.repo.Payment.FindByBookingID(ctx, bookingUUID)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}

	detail := &response.BookingDetailResponse{
		BookingResponse: response.BookingToResponse(booking, s.tripName(ctx, booking.TripID)),
		Payments:        make([]response.PaymentResponse, 0, len(payments)),
	}
	for _, p := range payments {
		detail.Payments = append(detail.Payments, response.PaymentToResponse(p))
	}
	return detail, nil
}

func (s *bookingService) ListBookings(ctx context.Context, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	st := entity.BookingStatus(status)
	switch st {
	case "", entity.BookingStatusInitiated, entity.BookingStatusPending, entity.BookingStatusConfirmed,
		entity.BookingStatusExpired, entity.BookingStatusCancelled:
	default:
		return nil, fmt.Errorf("validation failed: status: Must be one of: initiated, pending, confirmed, expired, cancelled")
	}

	bookings, err := s.repo.Booking.FindByStatus(ctx, st, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err), zap.String("status", status))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	total, err := s.repo.Booking.CountByStatus(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, bookings), req.CurrentPage(), req.Limit(), total), nil
}

// VerifyAdvancePayment confirms a booking once staff have seen the advance.
// Seats, payment record and referral credit commit together. Running it
// again on a confirmed booking changes nothing.
func (s *bookingService) VerifyAdvancePayment(ctx context.Context, staffID, bookingID string, req *request.VerifyPaymentRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	staffUUID, err := uuid.Parse(staffID)
	if err != nil {
		return nil, fmt.Errorf("invalid staff ID format %s: %w", staffID, err)
	}
	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	var (
		booking   *entity.Booking
		confirmed bool
		credited  bool
	)
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		booking, err = tx.Booking.FindByIDForUpdate(ctx, bookingUUID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if booking.BookingStatus == entity.BookingStatusConfirmed {
			return nil
		}
		if !booking.BookingStatus.CanTransitionTo(entity.BookingStatusConfirmed) {
			return fmt.Errorf("%w: %s booking cannot be confirmed", ErrInvalidTransition, booking.BookingStatus)
		}
		if req.Amount > booking.BalanceDue() {
			return fmt.Errorf("%w: %d due", ErrOverpayment, booking.BalanceDue())
		}
		if req.Amount == 0 && booking.BalanceDue() > 0 {
			return fmt.Errorf("validation failed: amount: Must be greater than 0")
		}

		// a booking paid entirely from the wallet has no transfer to record
		ref := paymentReference(req.UPIReference, booking.UPIReference)
		if ref == "" && req.Amount > 0 {
			return fmt.Errorf("validation failed: upi_reference: This field is required")
		}

		if booking.BatchID != nil {
			ok, err := tx.Batch.IncrementSeats(ctx, *booking.BatchID, booking.Travelers)
			if err != nil {
				return err
			}
			if !ok {
				return ErrBatchFull
			}
		}

		now := s.now()
		booking.AdvancePaid += req.Amount
		booking.BookingStatus = entity.BookingStatusConfirmed
		booking.PaymentStatus = entity.PaymentStatusAdvanceVerified
		if booking.BalanceDue() == 0 {
			booking.PaymentStatus = entity.PaymentStatusFullyPaid
		}
		if ref != "" {
			booking.UPIReference = &ref
		}
		booking.ConfirmedAt = &now
		booking.UpdatedAt = now
		if err := tx.Booking.Update(ctx, booking); err != nil {
			return err
		}

		if req.Amount > 0 {
			if err := tx.Payment.Create(ctx, &entity.Payment{
				BaseSimple:   entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
				BookingID:    booking.ID,
				Kind:         entity.PaymentKindAdvance,
				Amount:       req.Amount,
				UPIReference: ref,
				VerifiedBy:   staffUUID,
			}); err != nil {
				return err
			}
		}

		if booking.ReferralCode != nil {
			credited, err = s.ledger.creditReferral(ctx, tx, *booking.ReferralCode, booking.UserID, booking)
			if err != nil {
				return err
			}
		}
		confirmed = true
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrBookingNotFound) && !errors.Is(err, ErrInvalidTransition) &&
			!errors.Is(err, ErrOverpayment) && !errors.Is(err, ErrBatchFull) {
			s.log.Error("Failed to verify advance payment", zap.Error(err), zap.String("booking_id", bookingID))
		}
		return nil, err
	}

	tripName := s.tripName(ctx, booking.TripID)
	if confirmed {
		s.log.Info("Booking confirmed",
			zap.String("booking_id", bookingID),
			zap.String("verified_by", staffID),
			zap.Int64("advance", req.Amount),
			zap.Bool("referral_credited", credited),
		)
		s.sendConfirmation(ctx, booking, tripName)
	}

	resp := response.BookingToResponse(booking, tripName)
	return &resp, nil
}

func (s *bookingService) RecordBalancePayment(ctx context.Context, staffID, bookingID string, req *request.VerifyPaymentRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation failed: amount: Must be greater than 0")
	}
	if req.UPIReference == nil || strings.TrimSpace(*req.UPIReference) == "" {
		return nil, fmt.Errorf("validation failed: upi_reference: This field is required")
	}

	staffUUID, err := uuid.Parse(staffID)
	if err != nil {
		return nil, fmt.Errorf("invalid staff ID format %s: %w", staffID, err)
	}
	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	var booking *entity.Booking
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		booking, err = tx.Booking.FindByIDForUpdate(ctx, bookingUUID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if booking.BookingStatus != entity.BookingStatusConfirmed {
			return fmt.Errorf("%w: balance can only be paid on confirmed bookings", ErrInvalidTransition)
		}
		if req.Amount > booking.BalanceDue() {
			return fmt.Errorf("%w: %d due", ErrOverpayment, booking.BalanceDue())
		}

		now := s.now()
		ref := strings.TrimSpace(*req.UPIReference)
		booking.AdvancePaid += req.Amount
		booking.PaymentStatus = entity.PaymentStatusBalancePending
		if booking.BalanceDue() == 0 {
			booking.PaymentStatus = entity.PaymentStatusFullyPaid
		}
		booking.UpdatedAt = now
		if err := tx.Booking.Update(ctx, booking); err != nil {
			return err
		}

		return tx.Payment.Create(ctx, &entity.Payment{
			BaseSimple:   entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			BookingID:    booking.ID,
			Kind:         entity.PaymentKindBalance,
			Amount:       req.Amount,
			UPIReference: ref,
			VerifiedBy:   staffUUID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Balance payment recorded",
		zap.String("booking_id", bookingID),
		zap.Int64("amount", req.Amount),
		zap.String("payment_status", string(booking.PaymentStatus)),
	)
	resp := response.BookingToResponse(booking, s.tripName(ctx, booking.TripID))
	return &resp, nil
}

// CancelBooking releases the batch seats of a confirmed booking. Wallet
// credit spent on it is not refunded automatically.
func (s *bookingService) CancelBooking(ctx context.Context, staffID, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	var booking *entity.Booking
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		booking, err = tx.Booking.FindByIDForUpdate(ctx, bookingUUID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if !booking.BookingStatus.CanTransitionTo(entity.BookingStatusCancelled) {
			return fmt.Errorf("%w: %s booking cannot be cancelled", ErrInvalidTransition, booking.BookingStatus)
		}

		if booking.BookingStatus == entity.BookingStatusConfirmed && booking.BatchID != nil {
			if err := tx.Batch.ReleaseSeats(ctx, *booking.BatchID, booking.Travelers); err != nil {
				return err
			}
		}

		booking.BookingStatus = entity.BookingStatusCancelled
		booking.UpdatedAt = s.now()
		return tx.Booking.Update(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("cancelled_by", staffID),
		zap.String("reason", req.Reason),
	)
	resp := response.BookingToResponse(booking, s.tripName(ctx, booking.TripID))
	return &resp, nil
}

// ExpireAbandoned expires unpaid checkouts older than the grace window.
// No seats are released since none were taken before confirmation. Wallet
// credit spent on an expired booking is not refunded, so each forfeit is
// logged for staff to reconcile.
func (s *bookingService) ExpireAbandoned(ctx context.Context) ([]entity.ExpiredBooking, error) {
	cutoff := s.now().Add(-s.cfg.Booking.GracePeriod())
	expired, err := s.repo.Booking.ExpireAbandoned(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("expire abandoned bookings: %w", err)
	}
	for _, e := range expired {
		if e.WalletCreditApplied > 0 {
			s.log.Warn("Wallet credit forfeited by expired booking",
				zap.String("booking_id", e.ID.String()),
				zap.String("user_id", e.UserID.String()),
				zap.Int64("wallet_credit", e.WalletCreditApplied),
			)
		}
	}
	if len(expired) > 0 {
		s.log.Info("Abandoned bookings expired", zap.Int("count", len(expired)), zap.Time("cutoff", cutoff))
	}
	return expired, nil
}

// ==================== HELPER METHODS ====================

func (s *bookingService) sendConfirmation(ctx context.Context, booking *entity.Booking, tripName string) {
	user, err := s.repo.User.FindByID(ctx, booking.UserID)
	if err != nil || !user.CanReceiveWhatsApp() {
		return
	}

	var start time.Time
	if booking.BatchID != nil {
		if batch, err := s.repo.Batch.FindByID(ctx, *booking.BatchID); err == nil && batch != nil {
			start = batch.StartDate
		}
	}

	body := notify.BookingConfirmation(user.Username, booking.BookingCode, tripName, start, booking.Travelers, booking.BalanceDue())
	_ = s.messenger.deliver(ctx, user, &booking.ID, entity.MessageTypeBookingConfirmation, body)
}

func (s *bookingService) tripName(ctx context.Context, tripID uuid.UUID) string {
	trip, err := s.repo.Trip.FindByID(ctx, tripID)
	if err != nil || trip == nil {
		return ""
	}
	return trip.Name
}

func (s *bookingService) toResponses(ctx context.Context, bookings []*entity.Booking) []response.BookingResponse {
	names := make(map[uuid.UUID]string)
	items := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		name, ok := names[b.TripID]
		if !ok {
			name = s.tripName(ctx, b.TripID)
			names[b.TripID] = name
		}
		items = append(items, response.BookingToResponse(b, name))
	}
	return items
}

func paymentReference(given, stored *string) string {
	if given != nil && strings.TrimSpace(*given) != "" {
		return strings.TrimSpace(*given)
	}
	if stored != nil {
		return strings.TrimSpace(*stored)
	}
	return ""
}
