package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type MessageLogResponse struct {
	ID          string               `json:"id"`
	UserID      *string              `json:"user_id,omitempty"`
	BookingID   *string              `json:"booking_id,omitempty"`
	Phone       string               `json:"phone"`
	MessageType string               `json:"message_type"`
	Body        string               `json:"body"`
	Status      entity.MessageStatus `json:"status"`
	Error       *string              `json:"error,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	SentAt      *time.Time           `json:"sent_at,omitempty"`
}

type BroadcastResponse struct {
	Queued int `json:"queued"`
}

// JobSummary is returned by every scheduled job.
type JobSummary struct {
	Job       string `json:"job"`
	Processed int    `json:"processed"`
	Sent      int    `json:"sent"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
	// CreditForfeited totals wallet credit left on bookings the run expired.
	CreditForfeited int64 `json:"credit_forfeited,omitempty"`
}

func MessageLogToResponse(msg *entity.MessageLog) MessageLogResponse {
	resp := MessageLogResponse{
		ID:          msg.ID.String(),
		Phone:       msg.Phone,
		MessageType: msg.MessageType,
		Body:        msg.Body,
		Status:      msg.Status,
		Error:       msg.Error,
		CreatedAt:   msg.CreatedAt,
		SentAt:      msg.SentAt,
	}
	if msg.UserID != nil {
		id := msg.UserID.String()
		resp.UserID = &id
	}
	if msg.BookingID != nil {
		id := msg.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}
