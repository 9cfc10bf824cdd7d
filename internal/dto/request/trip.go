package request

type TripRequest struct {
	Name         string           `json:"name" validate:"required,min=1,max=200"`
	Description  string           `json:"description" validate:"max=5000"`
	BasePrice    int64            `json:"base_price" validate:"required,gt=0"`
	CityPrices   map[string]int64 `json:"city_prices,omitempty" validate:"omitempty,dive,keys,min=1,max=100,endkeys,gt=0"`
	Capacity     int              `json:"capacity" validate:"required,min=1,max=1000"`
	DurationDays int              `json:"duration_days" validate:"required,min=1,max=60"`
	Inclusions   []string         `json:"inclusions,omitempty" validate:"omitempty,dive,min=1,max=200"`
	Exclusions   []string         `json:"exclusions,omitempty" validate:"omitempty,dive,min=1,max=200"`
}

type TripUpdateRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	BasePrice    *int64           `json:"base_price,omitempty" validate:"omitempty,gt=0"`
	CityPrices   map[string]int64 `json:"city_prices,omitempty" validate:"omitempty,dive,keys,min=1,max=100,endkeys,gt=0"`
	Capacity     *int             `json:"capacity,omitempty" validate:"omitempty,min=1,max=1000"`
	DurationDays *int             `json:"duration_days,omitempty" validate:"omitempty,min=1,max=60"`
	Inclusions   []string         `json:"inclusions,omitempty" validate:"omitempty,dive,min=1,max=200"`
	Exclusions   []string         `json:"exclusions,omitempty" validate:"omitempty,dive,min=1,max=200"`
	IsActive     *bool            `json:"is_active,omitempty"`
}

type BookingLiveRequest struct {
	BookingLive *bool `json:"booking_live" validate:"required"`
}

type BatchRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	BatchSize int    `json:"batch_size" validate:"required,min=1,max=1000"`
	Status    string `json:"status" validate:"omitempty,oneof=upcoming active closed"`
}

type BatchUpdateRequest struct {
	StartDate *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	BatchSize *int    `json:"batch_size,omitempty" validate:"omitempty,min=1,max=1000"`
	Status    *string `json:"status,omitempty" validate:"omitempty,oneof=upcoming active closed"`
}
