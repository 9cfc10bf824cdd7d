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

type WalletRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)
	// GetOrCreateForUpdate lazily creates the user's wallet and locks it.
	GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)
	FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)
	UpdateTotals(ctx context.Context, wallet *entity.Wallet) error
	SetFrozen(ctx context.Context, userID uuid.UUID, frozen bool) error
}

type walletRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewWalletRepository(db database.Querier, log *zap.Logger) WalletRepository {
	return &walletRepository{
		db:  db,
		log: log.With(zap.String("repository", "wallet")),
	}
}

const walletColumns = `id, user_id, balance, total_earned, total_spent, is_frozen, created_at, updated_at`

func scanWallet(row scanner) (*entity.Wallet, error) {
	var w entity.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.TotalEarned, &w.TotalSpent, &w.IsFrozen, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walletRepository) find(ctx context.Context, query string, userID uuid.UUID) (*entity.Wallet, error) {
	wallet, err := scanWallet(r.db.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find wallet by user ID", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find wallet by user ID %s: %w", userID, err)
	}
	return wallet, nil
}

func (r *walletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	return r.find(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
}

func (r *walletRepository) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	return r.find(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *walletRepository) GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	now := time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO wallets (id, user_id, balance, total_earned, total_spent, is_frozen, created_at, updated_at)
		VALUES ($1, $2, 0, 0, 0, FALSE, $3, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID, now)
	if err != nil {
		r.log.Error("Failed to create wallet", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("create wallet for user %s: %w", userID, err)
	}

	wallet, err := r.FindByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet for user %s vanished after insert", userID)
	}
	return wallet, nil
}

func (r *walletRepository) UpdateTotals(ctx context.Context, wallet *entity.Wallet) error {
	query := `
		UPDATE wallets
		SET balance = $2, total_earned = $3, total_spent = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		wallet.ID,
		wallet.Balance,
		wallet.TotalEarned,
		wallet.TotalSpent,
		wallet.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update wallet totals",
			zap.Error(err),
			zap.String("wallet_id", wallet.ID.String()),
			zap.Int64("balance", wallet.Balance),
		)
		return fmt.Errorf("update wallet %s: %w", wallet.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet %s not found", wallet.ID)
	}
	return nil
}

func (r *walletRepository) SetFrozen(ctx context.Context, userID uuid.UUID, frozen bool) error {
	result, err := r.db.Exec(ctx,
		`UPDATE wallets SET is_frozen = $2, updated_at = NOW() WHERE user_id = $1`, userID, frozen)
	if err != nil {
		r.log.Error("Failed to set wallet frozen flag",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Bool("frozen", frozen),
		)
		return fmt.Errorf("set wallet frozen for user %s: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet for user %s not found", userID)
	}
	return nil
}
