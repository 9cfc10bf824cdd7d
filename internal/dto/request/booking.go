package request

type CreateBookingRequest struct {
	TripID        string  `json:"trip_id" validate:"required,uuid4"`
	BatchID       string  `json:"batch_id" validate:"required,uuid4"`
	Travelers     int     `json:"travelers" validate:"required,min=1,max=50"`
	DepartureCity *string `json:"departure_city,omitempty" validate:"omitempty,min=1,max=100"`
	ReferralCode  *string `json:"referral_code,omitempty" validate:"omitempty,min=4,max=20"`
	WalletCredit  int64   `json:"wallet_credit" validate:"gte=0"`
}

type PaymentProofRequest struct {
	UPIReference string `json:"upi_reference" validate:"required,min=6,max=64"`
}

// VerifyPaymentRequest is used by staff for both the advance and the balance.
// Amount may be zero only when wallet credit already covers the booking.
type VerifyPaymentRequest struct {
	Amount       int64   `json:"amount" validate:"gte=0"`
	UPIReference *string `json:"upi_reference,omitempty" validate:"omitempty,min=6,max=64"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
