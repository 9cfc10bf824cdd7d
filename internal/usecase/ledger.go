package usecase

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ledger applies balance changes to a locked wallet. Every change writes the
// wallet totals and exactly one transaction row through the same tx
// repositories, so callers get all or nothing from Repository.WithTx.
type ledger struct {
	cfg utils.WalletConfig
	now func() time.Time
	log *zap.Logger
}

func (l *ledger) credit(ctx context.Context, tx *repository.Repository, wallet *entity.Wallet,
	amount int64, typ entity.WalletTransactionType, description string, bookingID *uuid.UUID,
) (*entity.WalletTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if wallet.IsFrozen {
		return nil, ErrWalletFrozen
	}
	if !typ.IsCredit() {
		return nil, fmt.Errorf("transaction type %s is not a credit", typ)
	}

	now := l.now()
	wallet.Balance += amount
	wallet.TotalEarned += amount
	wallet.UpdatedAt = now
	if !wallet.Consistent() {
		return nil, fmt.Errorf("wallet %s would become inconsistent", wallet.ID)
	}

	txn := &entity.WalletTransaction{
		BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		WalletID:    wallet.ID,
		UserID:      wallet.UserID,
		Amount:      amount,
		Type:        typ,
		Description: description,
		BookingID:   bookingID,
		Remaining:   amount,
	}
	if validity := l.cfg.CreditValidity(); validity > 0 {
		expires := now.Add(validity)
		txn.ExpiresAt = &expires
	}

	if err := tx.Wallet.UpdateTotals(ctx, wallet); err != nil {
		return nil, err
	}
	if err := tx.WalletTxn.Create(ctx, txn); err != nil {
		return nil, err
	}

	l.log.Info("Wallet credited",
		zap.String("user_id", wallet.UserID.String()),
		zap.String("type", string(typ)),
		zap.Int64("amount", amount),
		zap.Int64("balance", wallet.Balance),
	)
	return txn, nil
}

func (l *ledger) checkDebit(wallet *entity.Wallet, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if wallet == nil {
		return ErrInsufficientBalance
	}
	if wallet.IsFrozen {
		return ErrWalletFrozen
	}
	if amount > wallet.Balance {
		return ErrInsufficientBalance
	}
	return nil
}

// debit spends from the earliest-expiring credit lots first.
func (l *ledger) debit(ctx context.Context, tx *repository.Repository, wallet *entity.Wallet,
	amount int64, typ entity.WalletTransactionType, description string, bookingID *uuid.UUID,
) (*entity.WalletTransaction, error) {
	if err := l.checkDebit(wallet, amount); err != nil {
		return nil, err
	}
	if typ.IsCredit() {
		return nil, fmt.Errorf("transaction type %s is not a debit", typ)
	}

	lots, err := tx.WalletTxn.FindOpenCreditsForUpdate(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}
	left := amount
	for _, lot := range lots {
		if left == 0 {
			break
		}
		take := min(lot.Remaining, left)
		if err := tx.WalletTxn.UpdateRemaining(ctx, lot.ID, lot.Remaining-take); err != nil {
			return nil, err
		}
		lot.Remaining -= take
		left -= take
	}

	now := l.now()
	wallet.Balance -= amount
	wallet.TotalSpent += amount
	wallet.UpdatedAt = now
	if !wallet.Consistent() {
		return nil, fmt.Errorf("wallet %s would become inconsistent", wallet.ID)
	}

	txn := &entity.WalletTransaction{
		BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		WalletID:    wallet.ID,
		UserID:      wallet.UserID,
		Amount:      -amount,
		Type:        typ,
		Description: description,
		BookingID:   bookingID,
	}

	if err := tx.Wallet.UpdateTotals(ctx, wallet); err != nil {
		return nil, err
	}
	if err := tx.WalletTxn.Create(ctx, txn); err != nil {
		return nil, err
	}

	l.log.Info("Wallet debited",
		zap.String("user_id", wallet.UserID.String()),
		zap.String("type", string(typ)),
		zap.Int64("amount", amount),
		zap.Int64("balance", wallet.Balance),
	)
	return txn, nil
}

// applyToBooking moves wallet money onto a booking, lowering what is payable.
func (l *ledger) applyToBooking(ctx context.Context, tx *repository.Repository, booking *entity.Booking, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > booking.BalanceDue() {
		return ErrCreditExceedsTotal
	}

	wallet, err := tx.Wallet.FindByUserIDForUpdate(ctx, booking.UserID)
	if err != nil {
		return err
	}
	if err := l.checkDebit(wallet, amount); err != nil {
		return err
	}

	desc := fmt.Sprintf("Applied to booking %s", booking.BookingCode)
	if _, err := l.debit(ctx, tx, wallet, amount, entity.TxnBookingDebit, desc, &booking.ID); err != nil {
		return err
	}

	booking.TotalAmount -= amount
	booking.WalletCreditApplied += amount
	booking.UpdatedAt = l.now()
	return tx.Booking.Update(ctx, booking)
}

// creditReferral rewards the owner of code once per (referred user, booking).
// It reports false for unknown codes, self-referrals, frozen referrer wallets
// and bookings that were already credited.
func (l *ledger) creditReferral(ctx context.Context, tx *repository.Repository, code string, referredUserID uuid.UUID, booking *entity.Booking) (bool, error) {
	if l.cfg.ReferralReward <= 0 || code == "" {
		return false, nil
	}

	rc, err := tx.Referral.FindByCode(ctx, code)
	if err != nil {
		return false, err
	}
	if rc == nil || rc.UserID == referredUserID {
		return false, nil
	}

	wallet, err := tx.Wallet.GetOrCreateForUpdate(ctx, rc.UserID)
	if err != nil {
		return false, err
	}
	if wallet.IsFrozen {
		l.log.Warn("Referral credit skipped, referrer wallet frozen",
			zap.String("referrer_id", rc.UserID.String()),
			zap.String("booking_id", booking.ID.String()),
		)
		return false, nil
	}

	now := l.now()
	inserted, err := tx.Referral.CreateEarning(ctx, &entity.ReferralEarning{
		BaseSimple:     entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		ReferrerID:     rc.UserID,
		ReferredUserID: referredUserID,
		BookingID:      booking.ID,
		Amount:         l.cfg.ReferralReward,
		Status:         entity.ReferralEarningCredited,
	})
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}

	desc := fmt.Sprintf("Referral reward for booking %s", booking.BookingCode)
	if _, err := l.credit(ctx, tx, wallet, l.cfg.ReferralReward, entity.TxnReferralCredit, desc, &booking.ID); err != nil {
		return false, err
	}
	return true, nil
}
