package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type WalletResponse struct {
	UserID      string `json:"user_id"`
	Balance     int64  `json:"balance"`
	TotalEarned int64  `json:"total_earned"`
	TotalSpent  int64  `json:"total_spent"`
	IsFrozen    bool   `json:"is_frozen"`
}

type WalletTransactionResponse struct {
	ID          string                       `json:"id"`
	Amount      int64                        `json:"amount"`
	Type        entity.WalletTransactionType `json:"type"`
	Description string                       `json:"description"`
	BookingID   *string                      `json:"booking_id,omitempty"`
	ExpiresAt   *time.Time                   `json:"expires_at,omitempty"`
	CreatedAt   time.Time                    `json:"created_at"`
}

type ReferralCodeResponse struct {
	Code              string `json:"code"`
	ReferralCount     int64  `json:"referral_count"`
	TotalEarned       int64  `json:"total_earned"`
	RewardPerReferral int64  `json:"reward_per_referral"`
}

// EmptyWallet is shown to users who have never earned a credit.
func EmptyWallet(userID string) WalletResponse {
	return WalletResponse{UserID: userID}
}

// Helper converters
func WalletToResponse(wallet *entity.Wallet) WalletResponse {
	return WalletResponse{
		UserID:      wallet.UserID.String(),
		Balance:     wallet.Balance,
		TotalEarned: wallet.TotalEarned,
		TotalSpent:  wallet.TotalSpent,
		IsFrozen:    wallet.IsFrozen,
	}
}

func WalletTransactionToResponse(txn *entity.WalletTransaction) WalletTransactionResponse {
	resp := WalletTransactionResponse{
		ID:          txn.ID.String(),
		Amount:      txn.Amount,
		Type:        txn.Type,
		Description: txn.Description,
		ExpiresAt:   txn.ExpiresAt,
		CreatedAt:   txn.CreatedAt,
	}
	if txn.BookingID != nil {
		id := txn.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}
