package repository

import (
	"context"

	"travel-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	User       UserRepository
	Session    SessionRepository
	Trip       TripRepository
	Batch      BatchRepository
	Booking    BookingRepository
	Payment    PaymentRepository
	Wallet     WalletRepository
	WalletTxn  WalletTransactionRepository
	Referral   ReferralRepository
	Review     ReviewRepository
	Reminder   ReminderRepository
	MessageLog MessageLogRepository

	// db is nil for repositories bound to an open transaction
	db  database.PgxIface
	log *zap.Logger
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepositories(db, log)
	repo.db = db
	return repo
}

func newRepositories(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:       NewUserRepository(q, log),
		Session:    NewSessionRepository(q, log),
		Trip:       NewTripRepository(q, log),
		Batch:      NewBatchRepository(q, log),
		Booking:    NewBookingRepository(q, log),
		Payment:    NewPaymentRepository(q, log),
		Wallet:     NewWalletRepository(q, log),
		WalletTxn:  NewWalletTransactionRepository(q, log),
		Referral:   NewReferralRepository(q, log),
		Review:     NewReviewRepository(q, log),
		Reminder:   NewReminderRepository(q, log),
		MessageLog: NewMessageLogRepository(q, log),
		log:        log,
	}
}

// WithTx runs fn with repositories bound to a single database transaction.
// Inside a transaction (or when no pool is attached) fn runs on r directly,
// so nested calls join the outer unit of work.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(newRepositories(tx, r.log))
	})
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}
