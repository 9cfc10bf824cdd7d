package repository

import (
	"context"
	"errors"
	"fmt"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TripRepository interface {
	Create(ctx context.Context, trip *entity.Trip) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error)
	FindAll(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.Trip, error)
	Count(ctx context.Context, activeOnly bool) (int64, error)
	Update(ctx context.Context, trip *entity.Trip) error
	SetBookingLive(ctx context.Context, id uuid.UUID, live bool) error
}

type tripRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewTripRepository(db database.Querier, log *zap.Logger) TripRepository {
	return &tripRepository{
		db:  db,
		log: log.With(zap.String("repository", "trip")),
	}
}

const tripColumns = `id, name, description, base_price, city_prices, capacity, duration_days,
		       inclusions, exclusions, booking_live, is_active, created_at, updated_at`

func scanTrip(row scanner) (*entity.Trip, error) {
	var trip entity.Trip
	err := row.Scan(
		&trip.ID,
		&trip.Name,
		&trip.Description,
		&trip.BasePrice,
		&trip.CityPrices,
		&trip.Capacity,
		&trip.DurationDays,
		&trip.Inclusions,
		&trip.Exclusions,
		&trip.BookingLive,
		&trip.IsActive,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *tripRepository) Create(ctx context.Context, trip *entity.Trip) error {
	query := `
		INSERT INTO trips (id, name, description, base_price, city_prices, capacity, duration_days,
		                   inclusions, exclusions, booking_live, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		trip.ID,
		trip.Name,
		trip.Description,
		trip.BasePrice,
		nonNilPrices(trip.CityPrices),
		trip.Capacity,
		trip.DurationDays,
		nonNilStrings(trip.Inclusions),
		nonNilStrings(trip.Exclusions),
		trip.BookingLive,
		trip.IsActive,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create trip", zap.Error(err), zap.String("name", trip.Name))
		return fmt.Errorf("create trip %s: %w", trip.Name, err)
	}
	return nil
}

func (r *tripRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find trip by ID", zap.Error(err), zap.String("trip_id", id.String()))
		return nil, fmt.Errorf("find trip by ID %s: %w", id, err)
	}
	return trip, nil
}

func (r *tripRepository) FindAll(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.Trip, error) {
	query := `SELECT ` + tripColumns + `
		FROM trips
		WHERE ($1 = FALSE OR is_active = TRUE)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, activeOnly, limit, offset)
	if err != nil {
		r.log.Error("Failed to list trips", zap.Error(err))
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []*entity.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			r.log.Error("Failed to scan trip row", zap.Error(err))
			return nil, fmt.Errorf("scan trip row: %w", err)
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func (r *tripRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM trips WHERE ($1 = FALSE OR is_active = TRUE)`, activeOnly).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count trips", zap.Error(err))
		return 0, fmt.Errorf("count trips: %w", err)
	}
	return count, nil
}

func (r *tripRepository) Update(ctx context.Context, trip *entity.Trip) error {
	query := `
		UPDATE trips
		SET name = $2, description = $3, base_price = $4, city_prices = $5, capacity = $6,
		    duration_days = $7, inclusions = $8, exclusions = $9, is_active = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		trip.ID,
		trip.Name,
		trip.Description,
		trip.BasePrice,
		nonNilPrices(trip.CityPrices),
		trip.Capacity,
		trip.DurationDays,
		nonNilStrings(trip.Inclusions),
		nonNilStrings(trip.Exclusions),
		trip.IsActive,
		trip.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update trip", zap.Error(err), zap.String("trip_id", trip.ID.String()))
		return fmt.Errorf("update trip %s: %w", trip.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("trip %s not found", trip.ID)
	}
	return nil
}

func (r *tripRepository) SetBookingLive(ctx context.Context, id uuid.UUID, live bool) error {
	result, err := r.db.Exec(ctx,
		`UPDATE trips SET booking_live = $2, updated_at = NOW() WHERE id = $1`, id, live)
	if err != nil {
		r.log.Error("Failed to toggle booking_live",
			zap.Error(err),
			zap.String("trip_id", id.String()),
			zap.Bool("live", live),
		)
		return fmt.Errorf("set booking_live of trip %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("trip %s not found", id)
	}
	return nil
}

func nonNilPrices(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
