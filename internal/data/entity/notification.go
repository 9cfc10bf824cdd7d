package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReminderType string

const (
	ReminderTrip7Days     ReminderType = "trip_7_days"
	ReminderBalance5Days  ReminderType = "balance_5_days"
	ReminderTrip1Day      ReminderType = "trip_1_day"
	ReminderReviewRequest ReminderType = "review_request"
)

// BalanceSpecific reminders are skipped for bookings with nothing due.
func (r ReminderType) BalanceSpecific() bool {
	return r == ReminderBalance5Days
}

type MessageStatus string

const (
	MessageStatusQueued MessageStatus = "queued"
	MessageStatusSent   MessageStatus = "sent"
	MessageStatusFailed MessageStatus = "failed"
)

const (
	MessageTypeBookingConfirmation = "booking_confirmation"
	MessageTypeBroadcast           = "broadcast"
)

// MessageLog records one outbound WhatsApp attempt.
type MessageLog struct {
	BaseSimple
	UserID      *uuid.UUID    `db:"user_id"`
	BookingID   *uuid.UUID    `db:"booking_id"`
	Phone       string        `db:"phone"`
	MessageType string        `db:"message_type"`
	Body        string        `db:"body"`
	Status      MessageStatus `db:"status"`
	Error       *string       `db:"error"`
	SentAt      *time.Time    `db:"sent_at"`
}

// ReminderCandidate joins a confirmed booking with what a reminder needs.
type ReminderCandidate struct {
	Booking   Booking
	TripName  string
	StartDate time.Time
	EndDate   time.Time
	User      User
}
