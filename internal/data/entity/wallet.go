package entity

import (
	"time"

	"github.com/google/uuid"
)

type Wallet struct {
	BaseNoDelete
	UserID      uuid.UUID `db:"user_id"`
	Balance     int64     `db:"balance"`
	TotalEarned int64     `db:"total_earned"`
	TotalSpent  int64     `db:"total_spent"`
	IsFrozen    bool      `db:"is_frozen"`
}

// Consistent checks the ledger invariant balance = earned - spent, balance >= 0.
func (w *Wallet) Consistent() bool {
	return w.Balance >= 0 && w.Balance == w.TotalEarned-w.TotalSpent
}

type WalletTransactionType string

const (
	TxnReferralCredit WalletTransactionType = "referral_credit"
	TxnBookingDebit   WalletTransactionType = "booking_debit"
	TxnAdminCredit    WalletTransactionType = "admin_credit"
	TxnAdminDebit     WalletTransactionType = "admin_debit"
	TxnSignupBonus    WalletTransactionType = "signup_bonus"
	TxnCreditExpired  WalletTransactionType = "credit_expired"
)

// IsCredit reports whether the type adds to the balance.
func (t WalletTransactionType) IsCredit() bool {
	return t == TxnReferralCredit || t == TxnAdminCredit || t == TxnSignupBonus
}

// WalletTransaction is an append-only ledger line. Credits additionally track
// Remaining (the unspent part) so that expiry only removes unused money.
type WalletTransaction struct {
	BaseSimple
	WalletID    uuid.UUID             `db:"wallet_id"`
	UserID      uuid.UUID             `db:"user_id"`
	Amount      int64                 `db:"amount"` // signed
	Type        WalletTransactionType `db:"type"`
	Description string                `db:"description"`
	BookingID   *uuid.UUID            `db:"booking_id"`
	Remaining   int64                 `db:"remaining"`
	ExpiresAt   *time.Time            `db:"expires_at"`
	ExpiredAt   *time.Time            `db:"expired_at"`
}

type ReferralCode struct {
	UserID    uuid.UUID `db:"user_id"`
	Code      string    `db:"code"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

type ReferralEarningStatus string

const (
	ReferralEarningPending  ReferralEarningStatus = "pending"
	ReferralEarningCredited ReferralEarningStatus = "credited"
)

type ReferralEarning struct {
	BaseSimple
	ReferrerID     uuid.UUID             `db:"referrer_id"`
	ReferredUserID uuid.UUID             `db:"referred_user_id"`
	BookingID      uuid.UUID             `db:"booking_id"`
	Amount         int64                 `db:"amount"`
	Status         ReferralEarningStatus `db:"status"`
}
