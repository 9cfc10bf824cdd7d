package repository

import (
	"context"
	"fmt"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReminderRepository stores the dedup markers of sent reminders. Balance
// reminders live in payment_reminders, trip reminders in booking_notifications.
type ReminderRepository interface {
	// Claim inserts the marker and reports whether this caller owns it.
	Claim(ctx context.Context, bookingID uuid.UUID, kind entity.ReminderType, amountDue int64) (bool, error)
	// Release drops a marker whose send failed so a later run can retry.
	Release(ctx context.Context, bookingID uuid.UUID, kind entity.ReminderType) error
}

type reminderRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewReminderRepository(db database.Querier, log *zap.Logger) ReminderRepository {
	return &reminderRepository{
		db:  db,
		log: log.With(zap.String("repository", "reminder")),
	}
}

func (r *reminderRepository) Claim(ctx context.Context, bookingID uuid.UUID, kind entity.ReminderType, amountDue int64) (bool, error) {
	var (
		query string
		args  []any
	)
	if kind.BalanceSpecific() {
		query = `
			INSERT INTO payment_reminders (booking_id, reminder_type, amount_due)
			VALUES ($1, $2, $3)
			ON CONFLICT (booking_id, reminder_type) DO NOTHING
		`
		args = []any{bookingID, string(kind), amountDue}
	} else {
		query = `
			INSERT INTO booking_notifications (booking_id, notification_type)
			VALUES ($1, $2)
			ON CONFLICT (booking_id, notification_type) DO NOTHING
		`
		args = []any{bookingID, string(kind)}
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to claim reminder marker",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("reminder_type", string(kind)),
		)
		return false, fmt.Errorf("claim %s reminder for booking %s: %w", kind, bookingID, err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *reminderRepository) Release(ctx context.Context, bookingID uuid.UUID, kind entity.ReminderType) error {
	query := `DELETE FROM booking_notifications WHERE booking_id = $1 AND notification_type = $2`
	if kind.BalanceSpecific() {
		query = `DELETE FROM payment_reminders WHERE booking_id = $1 AND reminder_type = $2`
	}

	if _, err := r.db.Exec(ctx, query, bookingID, string(kind)); err != nil {
		r.log.Error("Failed to release reminder marker",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("reminder_type", string(kind)),
		)
		return fmt.Errorf("release %s reminder for booking %s: %w", kind, bookingID, err)
	}
	return nil
}
