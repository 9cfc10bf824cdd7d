package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type BookingResponse struct {
	ID                  string               `json:"id"`
	BookingCode         string               `json:"booking_code"`
	UserID              string               `json:"user_id"`
	TripID              string               `json:"trip_id"`
	TripName            string               `json:"trip_name,omitempty"`
	BatchID             *string              `json:"batch_id,omitempty"`
	Travelers           int                  `json:"travelers"`
	DepartureCity       *string              `json:"departure_city,omitempty"`
	PricePerSeat        int64                `json:"price_per_seat"`
	WalletCreditApplied int64                `json:"wallet_credit_applied"`
	TotalAmount         int64                `json:"total_amount"`
	AdvancePaid         int64                `json:"advance_paid"`
	BalanceDue          int64                `json:"balance_due"`
	PaymentStatus       entity.PaymentStatus `json:"payment_status"`
	BookingStatus       entity.BookingStatus `json:"booking_status"`
	ReferralCode        *string              `json:"referral_code,omitempty"`
	UPIReference        *string              `json:"upi_reference,omitempty"`
	ConfirmedAt         *time.Time           `json:"confirmed_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

type PaymentResponse struct {
	ID           string             `json:"id"`
	Kind         entity.PaymentKind `json:"kind"`
	Amount       int64              `json:"amount"`
	UPIReference string             `json:"upi_reference"`
	VerifiedBy   string             `json:"verified_by"`
	CreatedAt    time.Time          `json:"created_at"`
}

type BookingDetailResponse struct {
	BookingResponse
	Payments []PaymentResponse `json:"payments"`
}

// Helper converters
func BookingToResponse(booking *entity.Booking, tripName string) BookingResponse {
	resp := BookingResponse{
		ID:                  booking.ID.String(),
		BookingCode:         booking.BookingCode,
		UserID:              booking.UserID.String(),
		TripID:              booking.TripID.String(),
		TripName:            tripName,
		Travelers:           booking.Travelers,
		DepartureCity:       booking.DepartureCity,
		PricePerSeat:        booking.PricePerSeat,
		WalletCreditApplied: booking.WalletCreditApplied,
		TotalAmount:         booking.TotalAmount,
		AdvancePaid:         booking.AdvancePaid,
		BalanceDue:          booking.BalanceDue(),
		PaymentStatus:       booking.PaymentStatus,
		BookingStatus:       booking.BookingStatus,
		ReferralCode:        booking.ReferralCode,
		UPIReference:        booking.UPIReference,
		ConfirmedAt:         booking.ConfirmedAt,
		CreatedAt:           booking.CreatedAt,
	}
	if booking.BatchID != nil {
		id := booking.BatchID.String()
		resp.BatchID = &id
	}
	return resp
}

func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           payment.ID.String(),
		Kind:         payment.Kind,
		Amount:       payment.Amount,
		UPIReference: payment.UPIReference,
		VerifiedBy:   payment.VerifiedBy.String(),
		CreatedAt:    payment.CreatedAt,
	}
}
