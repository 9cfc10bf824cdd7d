package entity

import (
	"github.com/google/uuid"
)

type PaymentKind string

const (
	PaymentKindAdvance PaymentKind = "advance"
	PaymentKindBalance PaymentKind = "balance"
)

// Payment is a staff-verified UPI transfer against a booking.
type Payment struct {
	BaseSimple
	BookingID    uuid.UUID   `db:"booking_id"`
	Kind         PaymentKind `db:"kind"`
	Amount       int64       `db:"amount"`
	UPIReference string      `db:"upi_reference"`
	VerifiedBy   uuid.UUID   `db:"verified_by"`
}
