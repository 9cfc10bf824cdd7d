package entity

import "strings"

type Trip struct {
	BaseNoDelete
	Name         string           `db:"name"`
	Description  string           `db:"description"`
	BasePrice    int64            `db:"base_price"`
	CityPrices   map[string]int64 `db:"city_prices"` // departure city -> per-seat price
	Capacity     int              `db:"capacity"`
	DurationDays int              `db:"duration_days"`
	Inclusions   []string         `db:"inclusions"`
	Exclusions   []string         `db:"exclusions"`
	BookingLive  bool             `db:"booking_live"`
	IsActive     bool             `db:"is_active"`
}

// PriceFor returns the per-seat base price for a departure city, falling back
// to BasePrice when the city has no override.
func (t *Trip) PriceFor(city string) int64 {
	if city == "" || len(t.CityPrices) == 0 {
		return t.BasePrice
	}
	for name, price := range t.CityPrices {
		if strings.EqualFold(name, strings.TrimSpace(city)) && price > 0 {
			return price
		}
	}
	return t.BasePrice
}
