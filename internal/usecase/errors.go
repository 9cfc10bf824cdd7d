package usecase

import "errors"

// Not found
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrTripNotFound    = errors.New("trip not found")
	ErrBatchNotFound   = errors.New("batch not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrReviewNotFound  = errors.New("review not found")
)

// Availability and booking rules
var (
	ErrTripNotBookable     = errors.New("trip is not currently bookable")
	ErrNoActiveBatches     = errors.New("trip has no active batches")
	ErrNoAvailableSeats    = errors.New("trip has no available seats")
	ErrBatchNotPurchasable = errors.New("batch is not open for booking")
	ErrBatchFull           = errors.New("not enough seats left in batch")
	ErrInvalidTransition   = errors.New("invalid booking status transition")
	ErrOverpayment         = errors.New("amount exceeds balance due")
)

// Wallet ledger preconditions
var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrWalletFrozen        = errors.New("wallet is frozen")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrCreditExceedsTotal  = errors.New("wallet credit exceeds amount payable")
	ErrInvalidReferralCode = errors.New("invalid referral code")
)

// Accounts and reviews
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyReviewed    = errors.New("trip already reviewed")
	ErrReviewNotAllowed   = errors.New("only travelers who completed the trip can review it")
)

// ledgerPrecondition reports whether err is an expected wallet outcome rather
// than a fault.
func ledgerPrecondition(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrWalletFrozen) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrCreditExceedsTotal)
}
