package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusInitiated BookingStatus = "initiated"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusExpired   BookingStatus = "expired"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending         PaymentStatus = "pending"
	PaymentStatusAdvanceVerified PaymentStatus = "advance_verified"
	PaymentStatusBalancePending  PaymentStatus = "balance_pending"
	PaymentStatusFullyPaid       PaymentStatus = "fully_paid"
	PaymentStatusExpired         PaymentStatus = "expired"
)

type Booking struct {
	BaseNoDelete
	BookingCode         string        `db:"booking_code"`
	UserID              uuid.UUID     `db:"user_id"`
	TripID              uuid.UUID     `db:"trip_id"`
	BatchID             *uuid.UUID    `db:"batch_id"` // nil for pre-batch interest bookings
	Travelers           int           `db:"travelers"`
	DepartureCity       *string       `db:"departure_city"`
	PricePerSeat        int64         `db:"price_per_seat"`
	WalletCreditApplied int64         `db:"wallet_credit_applied"`
	TotalAmount         int64         `db:"total_amount"`
	AdvancePaid         int64         `db:"advance_paid"`
	PaymentStatus       PaymentStatus `db:"payment_status"`
	BookingStatus       BookingStatus `db:"booking_status"`
	ReferralCode        *string       `db:"referral_code"`
	UPIReference        *string       `db:"upi_reference"`
	ConfirmedAt         *time.Time    `db:"confirmed_at"`
}

// ExpiredBooking is one row moved to expired by the abandoned-checkout sweep.
type ExpiredBooking struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	WalletCreditApplied int64
}

// BalanceDue is what the traveler still owes.
func (b *Booking) BalanceDue() int64 {
	if b.AdvancePaid >= b.TotalAmount {
		return 0
	}
	return b.TotalAmount - b.AdvancePaid
}

// Abandoned reports whether the booking never got past checkout within grace.
func (b *Booking) Abandoned(now time.Time, grace time.Duration) bool {
	return b.BookingStatus == BookingStatusInitiated &&
		b.PaymentStatus == PaymentStatusPending &&
		b.CreatedAt.Before(now.Add(-grace))
}

// CanTransitionTo encodes the booking_status state machine.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusInitiated:
		return next == BookingStatusPending || next == BookingStatusConfirmed || next == BookingStatusExpired
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusExpired || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	default:
		return false
	}
}
