package entity

import (
	"time"

	"github.com/google/uuid"
)

type BatchStatus string

const (
	BatchStatusUpcoming BatchStatus = "upcoming"
	BatchStatusActive   BatchStatus = "active"
	BatchStatusClosed   BatchStatus = "closed"
)

type Batch struct {
	BaseNoDelete
	TripID      uuid.UUID   `db:"trip_id"`
	StartDate   time.Time   `db:"start_date"`
	EndDate     time.Time   `db:"end_date"`
	BatchSize   int         `db:"batch_size"`
	SeatsBooked int         `db:"seats_booked"`
	Status      BatchStatus `db:"status"`
}

// AvailableSeats never goes below zero, even if seats_booked overshot.
func (b *Batch) AvailableSeats() int {
	if b.SeatsBooked >= b.BatchSize {
		return 0
	}
	return b.BatchSize - b.SeatsBooked
}

// Purchasable is true for active batches that still have seats.
func (b *Batch) Purchasable() bool {
	return b.Status == BatchStatusActive && b.AvailableSeats() > 0
}
