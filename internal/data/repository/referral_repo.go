package repository

import (
	"context"
	"errors"
	"fmt"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReferralRepository interface {
	FindCodeByUserID(ctx context.Context, userID uuid.UUID) (*entity.ReferralCode, error)
	FindByCode(ctx context.Context, code string) (*entity.ReferralCode, error)
	// CreateCode reports false when the user already has a code or the code is taken.
	CreateCode(ctx context.Context, code *entity.ReferralCode) (bool, error)

	// CreateEarning reports false when the referred user was already credited for the booking.
	CreateEarning(ctx context.Context, earning *entity.ReferralEarning) (bool, error)
	EarningStats(ctx context.Context, referrerID uuid.UUID) (count int64, total int64, err error)
}

type referralRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewReferralRepository(db database.Querier, log *zap.Logger) ReferralRepository {
	return &referralRepository{
		db:  db,
		log: log.With(zap.String("repository", "referral")),
	}
}

func (r *referralRepository) findCode(ctx context.Context, query string, arg any) (*entity.ReferralCode, error) {
	var c entity.ReferralCode
	err := r.db.QueryRow(ctx, query, arg).Scan(&c.UserID, &c.Code, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find referral code", zap.Error(err))
		return nil, fmt.Errorf("find referral code: %w", err)
	}
	return &c, nil
}

func (r *referralRepository) FindCodeByUserID(ctx context.Context, userID uuid.UUID) (*entity.ReferralCode, error) {
	return r.findCode(ctx,
		`SELECT user_id, code, is_active, created_at FROM referral_codes WHERE user_id = $1`, userID)
}

// FindByCode matches active codes only, case-insensitively.
func (r *referralRepository) FindByCode(ctx context.Context, code string) (*entity.ReferralCode, error) {
	return r.findCode(ctx,
		`SELECT user_id, code, is_active, created_at FROM referral_codes WHERE UPPER(code) = UPPER($1) AND is_active = TRUE`, code)
}

func (r *referralRepository) CreateCode(ctx context.Context, code *entity.ReferralCode) (bool, error) {
	result, err := r.db.Exec(ctx, `
		INSERT INTO referral_codes (user_id, code, is_active, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, code.UserID, code.Code, code.IsActive, code.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create referral code", zap.Error(err), zap.String("user_id", code.UserID.String()))
		return false, fmt.Errorf("create referral code for user %s: %w", code.UserID, err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *referralRepository) CreateEarning(ctx context.Context, earning *entity.ReferralEarning) (bool, error) {
	result, err := r.db.Exec(ctx, `
		INSERT INTO referral_earnings (id, referrer_id, referred_user_id, booking_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (referred_user_id, booking_id) DO NOTHING
	`,
		earning.ID,
		earning.ReferrerID,
		earning.ReferredUserID,
		earning.BookingID,
		earning.Amount,
		earning.Status,
		earning.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create referral earning",
			zap.Error(err),
			zap.String("referrer_id", earning.ReferrerID.String()),
			zap.String("booking_id", earning.BookingID.String()),
		)
		return false, fmt.Errorf("create referral earning for booking %s: %w", earning.BookingID, err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *referralRepository) EarningStats(ctx context.Context, referrerID uuid.UUID) (int64, int64, error) {
	var count, total int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM referral_earnings
		WHERE referrer_id = $1 AND status = 'credited'
	`, referrerID).Scan(&count, &total)
	if err != nil {
		r.log.Error("Failed to get referral earning stats", zap.Error(err), zap.String("referrer_id", referrerID.String()))
		return 0, 0, fmt.Errorf("referral earning stats for %s: %w", referrerID, err)
	}
	return count, total, nil
}
