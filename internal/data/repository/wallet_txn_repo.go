package repository

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WalletTransactionRepository interface {
	Create(ctx context.Context, txn *entity.WalletTransaction) error
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// Credit lots
	FindOpenCreditsForUpdate(ctx context.Context, walletID uuid.UUID) ([]*entity.WalletTransaction, error)
	UpdateRemaining(ctx context.Context, id uuid.UUID, remaining int64) error
	FindUsersWithExpiredCredits(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	MarkExpired(ctx context.Context, id uuid.UUID, at time.Time) error
}

type walletTransactionRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewWalletTransactionRepository(db database.Querier, log *zap.Logger) WalletTransactionRepository {
	return &walletTransactionRepository{
		db:  db,
		log: log.With(zap.String("repository", "wallet_transaction")),
	}
}

const walletTxnColumns = `wt.id, wt.wallet_id, wt.user_id, wt.amount, wt.type, wt.description, wt.booking_id,
		       wt.remaining, wt.expires_at, wt.expired_at, wt.created_at`

func scanWalletTxn(row scanner) (*entity.WalletTransaction, error) {
	var t entity.WalletTransaction
	err := row.Scan(
		&t.ID,
		&t.WalletID,
		&t.UserID,
		&t.Amount,
		&t.Type,
		&t.Description,
		&t.BookingID,
		&t.Remaining,
		&t.ExpiresAt,
		&t.ExpiredAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *walletTransactionRepository) Create(ctx context.Context, txn *entity.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions (id, wallet_id, user_id, amount, type, description, booking_id,
		                                 remaining, expires_at, expired_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		txn.ID,
		txn.WalletID,
		txn.UserID,
		txn.Amount,
		txn.Type,
		txn.Description,
		txn.BookingID,
		txn.Remaining,
		txn.ExpiresAt,
		txn.ExpiredAt,
		txn.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create wallet transaction",
			zap.Error(err),
			zap.String("wallet_id", txn.WalletID.String()),
			zap.String("type", string(txn.Type)),
			zap.Int64("amount", txn.Amount),
		)
		return fmt.Errorf("create wallet transaction: %w", err)
	}
	return nil
}

func (r *walletTransactionRepository) list(ctx context.Context, query string, args ...any) ([]*entity.WalletTransaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list wallet transactions", zap.Error(err))
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	var txns []*entity.WalletTransaction
	for rows.Next() {
		t, err := scanWalletTxn(rows)
		if err != nil {
			r.log.Error("Failed to scan wallet transaction", zap.Error(err))
			return nil, fmt.Errorf("scan wallet transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *walletTransactionRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error) {
	query := `SELECT ` + walletTxnColumns + `
		FROM wallet_transactions wt
		WHERE wt.user_id = $1
		ORDER BY wt.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *walletTransactionRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count wallet transactions", zap.Error(err), zap.String("user_id", userID.String()))
		return 0, fmt.Errorf("count wallet transactions for user %s: %w", userID, err)
	}
	return count, nil
}

// FindOpenCreditsForUpdate returns unspent credit lots of a wallet in the
// order debits consume them: earliest expiry first, non-expiring last.
func (r *walletTransactionRepository) FindOpenCreditsForUpdate(ctx context.Context, walletID uuid.UUID) ([]*entity.WalletTransaction, error) {
	query := `SELECT ` + walletTxnColumns + `
		FROM wallet_transactions wt
		WHERE wt.wallet_id = $1 AND wt.remaining > 0 AND wt.expired_at IS NULL
		ORDER BY wt.expires_at ASC NULLS LAST, wt.created_at ASC
		FOR UPDATE
	`
	return r.list(ctx, query, walletID)
}

func (r *walletTransactionRepository) UpdateRemaining(ctx context.Context, id uuid.UUID, remaining int64) error {
	_, err := r.db.Exec(ctx, `UPDATE wallet_transactions SET remaining = $2 WHERE id = $1`, id, remaining)
	if err != nil {
		r.log.Error("Failed to update credit remaining", zap.Error(err), zap.String("transaction_id", id.String()))
		return fmt.Errorf("update remaining of transaction %s: %w", id, err)
	}
	return nil
}

// FindUsersWithExpiredCredits lists owners of unfrozen wallets holding
// credit lots past their expiry with money left on them.
func (r *walletTransactionRepository) FindUsersWithExpiredCredits(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT w.user_id
		FROM wallet_transactions wt
		JOIN wallets w ON w.id = wt.wallet_id
		WHERE wt.remaining > 0 AND wt.expired_at IS NULL
		  AND wt.expires_at IS NOT NULL AND wt.expires_at <= $1
		  AND w.is_frozen = FALSE
		ORDER BY w.user_id
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to find wallets with expired credits", zap.Error(err))
		return nil, fmt.Errorf("find wallets with expired credits: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan wallet owner: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

func (r *walletTransactionRepository) MarkExpired(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE wallet_transactions SET remaining = 0, expired_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		r.log.Error("Failed to mark credit expired", zap.Error(err), zap.String("transaction_id", id.String()))
		return fmt.Errorf("mark transaction %s expired: %w", id, err)
	}
	return nil
}
