// Package pricing computes the display price of a batch from its base price,
// occupancy and how soon it departs. Everything here is pure: no I/O, no
// shared state, safe to call from any request as often as needed.
package pricing

import (
	"math"
	"time"
)

type BadgeKind string

const (
	BadgeSurge    BadgeKind = "surge"
	BadgeDiscount BadgeKind = "discount"
)

type Badge struct {
	Label string    `json:"label"`
	Kind  BadgeKind `json:"type"`
}

var (
	BadgeHighDemand = Badge{Label: "High Demand", Kind: BadgeSurge}
	BadgeLastMinute = Badge{Label: "Last Minute", Kind: BadgeSurge}
	BadgeEarlyBird  = Badge{Label: "Early Bird Offer", Kind: BadgeDiscount}
)

const (
	highOccupancyPct   = 85
	highOccupancyAdj   = 15
	mediumOccupancyPct = 70
	mediumOccupancyAdj = 8

	lastMinuteDays = 7
	lastMinuteAdj  = 10
	earlyBirdDays  = 30
	earlyBirdAdj   = -5

	// MaxAdjustment bounds the summed adjustment in both directions.
	MaxAdjustment = 20
)

type Input struct {
	BasePrice      int64
	BatchSize      int
	AvailableSeats int
	StartDate      time.Time
}

type Result struct {
	BasePrice         int64   `json:"base_price"`
	EffectivePrice    int64   `json:"effective_price"`
	AdjustmentPercent int     `json:"adjustment_percent"`
	Badges            []Badge `json:"badges"`
}

// Compute prices one batch as of now. Day arithmetic uses calendar dates in
// now's location, so pass now already converted to the business timezone.
func Compute(in Input, now time.Time) Result {
	var (
		adjustment int
		badges     = make([]Badge, 0, 2)
	)

	switch occ := OccupancyPercent(in.BatchSize, in.AvailableSeats); {
	case occ >= highOccupancyPct:
		adjustment += highOccupancyAdj
		badges = append(badges, BadgeHighDemand)
	case occ >= mediumOccupancyPct:
		adjustment += mediumOccupancyAdj
		badges = append(badges, BadgeHighDemand)
	}

	if !in.StartDate.IsZero() {
		switch days := DaysUntil(in.StartDate, now); {
		case days >= 0 && days <= lastMinuteDays:
			adjustment += lastMinuteAdj
			badges = append(badges, BadgeLastMinute)
		case days > earlyBirdDays:
			adjustment += earlyBirdAdj
			badges = append(badges, BadgeEarlyBird)
		}
	}

	adjustment = clamp(adjustment, -MaxAdjustment, MaxAdjustment)

	return Result{
		BasePrice:         in.BasePrice,
		EffectivePrice:    Apply(in.BasePrice, adjustment),
		AdjustmentPercent: adjustment,
		Badges:            badges,
	}
}

// ComputeISO is Compute for a YYYY-MM-DD start date. An unparsable date
// contributes no date adjustment.
func ComputeISO(basePrice int64, batchSize, availableSeats int, startDateISO string, now time.Time) Result {
	start, err := time.Parse(time.DateOnly, startDateISO)
	if err != nil {
		start = time.Time{}
	}
	return Compute(Input{
		BasePrice:      basePrice,
		BatchSize:      batchSize,
		AvailableSeats: availableSeats,
		StartDate:      start,
	}, now)
}

// OccupancyPercent is 0 for a non-positive batch size.
func OccupancyPercent(batchSize, availableSeats int) float64 {
	if batchSize <= 0 {
		return 0
	}
	return float64(batchSize-availableSeats) / float64(batchSize) * 100
}

// DaysUntil counts whole calendar days from now's date to start's date.
// The start is read as a date, ignoring its clock and zone.
func DaysUntil(start, now time.Time) int {
	y, m, d := start.Date()
	startDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(startDay.Sub(today).Hours() / 24)
}

// Apply rounds basePrice scaled by the percentage to the nearest unit.
func Apply(basePrice int64, adjustmentPercent int) int64 {
	return int64(math.Round(float64(basePrice) * (1 + float64(adjustmentPercent)/100)))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
