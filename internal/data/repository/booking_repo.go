package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindByStatus(ctx context.Context, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error)
	CountByStatus(ctx context.Context, status entity.BookingStatus) (int64, error)
	Update(ctx context.Context, booking *entity.Booking) error

	// Business queries
	ExpireAbandoned(ctx context.Context, createdBefore time.Time) ([]entity.ExpiredBooking, error)
	FindConfirmedStartingOn(ctx context.Context, day time.Time) ([]*entity.ReminderCandidate, error)
	FindConfirmedEndedOn(ctx context.Context, day time.Time) ([]*entity.ReminderCandidate, error)
	FindReviewable(ctx context.Context, userID, tripID uuid.UUID, today time.Time) (*entity.Booking, error)
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `b.id, b.booking_code, b.user_id, b.trip_id, b.batch_id, b.travelers, b.departure_city,
		       b.price_per_seat, b.wallet_credit_applied, b.total_amount, b.advance_paid,
		       b.payment_status, b.booking_status, b.referral_code, b.upi_reference,
		       b.confirmed_at, b.created_at, b.updated_at`

func bookingFields(booking *entity.Booking) []any {
	return []any{
		&booking.ID,
		&booking.BookingCode,
		&booking.UserID,
		&booking.TripID,
		&booking.BatchID,
		&booking.Travelers,
		&booking.DepartureCity,
		&booking.PricePerSeat,
		&booking.WalletCreditApplied,
		&booking.TotalAmount,
		&booking.AdvancePaid,
		&booking.PaymentStatus,
		&booking.BookingStatus,
		&booking.ReferralCode,
		&booking.UPIReference,
		&booking.ConfirmedAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	}
}

func scanBooking(row scanner) (*entity.Booking, error) {
	var booking entity.Booking
	if err := row.Scan(bookingFields(&booking)...); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, booking_code, user_id, trip_id, batch_id, travelers, departure_city,
		                      price_per_seat, wallet_credit_applied, total_amount, advance_paid,
		                      payment_status, booking_status, referral_code, upi_reference,
		                      confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.BookingCode,
		booking.UserID,
		booking.TripID,
		booking.BatchID,
		booking.Travelers,
		booking.DepartureCity,
		booking.PricePerSeat,
		booking.WalletCreditApplied,
		booking.TotalAmount,
		booking.AdvancePaid,
		booking.PaymentStatus,
		booking.BookingStatus,
		booking.ReferralCode,
		booking.UPIReference,
		booking.ConfirmedAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_code", booking.BookingCode),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.BookingCode, err)
	}

	return nil
}

func (r *bookingRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}
	return booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1`, id)
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1 FOR UPDATE`, id)
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID", zap.Error(err), zap.String("user_id", userID.String()))
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID, err)
	}
	return count, nil
}

func (r *bookingRepository) FindByStatus(ctx context.Context, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE ($1 = '' OR b.booking_status = $1)
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, string(status), limit, offset)
}

func (r *bookingRepository) CountByStatus(ctx context.Context, status entity.BookingStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE ($1 = '' OR booking_status = $1)`, string(status)).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by status", zap.Error(err), zap.String("status", string(status)))
		return 0, fmt.Errorf("count bookings by status %s: %w", status, err)
	}
	return count, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET wallet_credit_applied = $2, total_amount = $3, advance_paid = $4,
		    payment_status = $5, booking_status = $6, upi_reference = $7,
		    confirmed_at = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.WalletCreditApplied,
		booking.TotalAmount,
		booking.AdvancePaid,
		booking.PaymentStatus,
		booking.BookingStatus,
		booking.UPIReference,
		booking.ConfirmedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return fmt.Errorf("update booking %s: %w", booking.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", booking.ID)
	}
	return nil
}

// ExpireAbandoned moves unpaid checkouts older than createdBefore to expired
// in one statement and returns what each affected booking had spent from
// the wallet.
func (r *bookingRepository) ExpireAbandoned(ctx context.Context, createdBefore time.Time) ([]entity.ExpiredBooking, error) {
	query := `
		UPDATE bookings
		SET booking_status = 'expired', payment_status = 'expired', updated_at = NOW()
		WHERE booking_status = 'initiated' AND payment_status = 'pending' AND created_at < $1
		RETURNING id, user_id, wallet_credit_applied
	`

	rows, err := r.db.Query(ctx, query, createdBefore)
	if err != nil {
		r.log.Error("Failed to expire abandoned bookings", zap.Error(err), zap.Time("created_before", createdBefore))
		return nil, fmt.Errorf("expire abandoned bookings: %w", err)
	}
	defer rows.Close()

	var expired []entity.ExpiredBooking
	for rows.Next() {
		var e entity.ExpiredBooking
		if err := rows.Scan(&e.ID, &e.UserID, &e.WalletCreditApplied); err != nil {
			return nil, fmt.Errorf("scan expired booking: %w", err)
		}
		expired = append(expired, e)
	}
	return expired, rows.Err()
}

const reminderQuery = `SELECT ` + bookingColumns + `, t.name, bt.start_date, bt.end_date,
		       u.id, u.username, u.phone, u.whatsapp_opt_in, u.is_active
		FROM bookings b
		JOIN batches bt ON bt.id = b.batch_id
		JOIN trips t ON t.id = b.trip_id
		JOIN users u ON u.id = b.user_id
		WHERE b.booking_status = 'confirmed' AND `

func (r *bookingRepository) findCandidates(ctx context.Context, where string, day time.Time) ([]*entity.ReminderCandidate, error) {
	rows, err := r.db.Query(ctx, reminderQuery+where+` ORDER BY b.created_at`, day.Format("2006-01-02"))
	if err != nil {
		r.log.Error("Failed to find reminder candidates", zap.Error(err), zap.String("where", where))
		return nil, fmt.Errorf("find reminder candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*entity.ReminderCandidate
	for rows.Next() {
		var c entity.ReminderCandidate
		dest := append(bookingFields(&c.Booking),
			&c.TripName,
			&c.StartDate,
			&c.EndDate,
			&c.User.ID,
			&c.User.Username,
			&c.User.Phone,
			&c.User.WhatsAppOptIn,
			&c.User.IsActive,
		)
		if err := rows.Scan(dest...); err != nil {
			r.log.Error("Failed to scan reminder candidate", zap.Error(err))
			return nil, fmt.Errorf("scan reminder candidate: %w", err)
		}
		candidates = append(candidates, &c)
	}
	return candidates, rows.Err()
}

func (r *bookingRepository) FindConfirmedStartingOn(ctx context.Context, day time.Time) ([]*entity.ReminderCandidate, error) {
	return r.findCandidates(ctx, `bt.start_date = $1::date`, day)
}

func (r *bookingRepository) FindConfirmedEndedOn(ctx context.Context, day time.Time) ([]*entity.ReminderCandidate, error) {
	return r.findCandidates(ctx, `bt.end_date = $1::date`, day)
}

// FindReviewable returns a confirmed booking of the user for the trip whose
// batch has already ended, or nil.
func (r *bookingRepository) FindReviewable(ctx context.Context, userID, tripID uuid.UUID, today time.Time) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN batches bt ON bt.id = b.batch_id
		WHERE b.user_id = $1 AND b.trip_id = $2 AND b.booking_status = 'confirmed'
		  AND bt.end_date < $3::date
		ORDER BY bt.end_date DESC
		LIMIT 1
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, userID, tripID, today.Format("2006-01-02")))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reviewable booking",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("trip_id", tripID.String()),
		)
		return nil, fmt.Errorf("find reviewable booking: %w", err)
	}
	return booking, nil
}
