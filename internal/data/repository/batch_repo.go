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

type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Batch, error)
	FindByTripID(ctx context.Context, tripID uuid.UUID) ([]*entity.Batch, error)
	Update(ctx context.Context, batch *entity.Batch) error
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementSeats adds seats only if the batch stays within batch_size.
	// It reports false when the batch cannot take that many travelers.
	IncrementSeats(ctx context.Context, id uuid.UUID, seats int) (bool, error)
	ReleaseSeats(ctx context.Context, id uuid.UUID, seats int) error
}

type batchRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBatchRepository(db database.Querier, log *zap.Logger) BatchRepository {
	return &batchRepository{
		db:  db,
		log: log.With(zap.String("repository", "batch")),
	}
}

const batchColumns = `id, trip_id, start_date, end_date, batch_size, seats_booked, status, created_at, updated_at`

func scanBatch(row scanner) (*entity.Batch, error) {
	var batch entity.Batch
	err := row.Scan(
		&batch.ID,
		&batch.TripID,
		&batch.StartDate,
		&batch.EndDate,
		&batch.BatchSize,
		&batch.SeatsBooked,
		&batch.Status,
		&batch.CreatedAt,
		&batch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepository) Create(ctx context.Context, batch *entity.Batch) error {
	query := `
		INSERT INTO batches (id, trip_id, start_date, end_date, batch_size, seats_booked, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		batch.ID,
		batch.TripID,
		batch.StartDate,
		batch.EndDate,
		batch.BatchSize,
		batch.SeatsBooked,
		batch.Status,
		batch.CreatedAt,
		batch.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create batch",
			zap.Error(err),
			zap.String("trip_id", batch.TripID.String()),
		)
		return fmt.Errorf("create batch for trip %s: %w", batch.TripID, err)
	}
	return nil
}

func (r *batchRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`

	batch, err := scanBatch(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find batch by ID", zap.Error(err), zap.String("batch_id", id.String()))
		return nil, fmt.Errorf("find batch by ID %s: %w", id, err)
	}
	return batch, nil
}

func (r *batchRepository) FindByTripID(ctx context.Context, tripID uuid.UUID) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches
		WHERE trip_id = $1
		ORDER BY start_date
	`

	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		r.log.Error("Failed to find batches by trip ID", zap.Error(err), zap.String("trip_id", tripID.String()))
		return nil, fmt.Errorf("find batches by trip ID %s: %w", tripID, err)
	}
	defer rows.Close()

	var batches []*entity.Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			r.log.Error("Failed to scan batch row", zap.Error(err))
			return nil, fmt.Errorf("scan batch row: %w", err)
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

func (r *batchRepository) Update(ctx context.Context, batch *entity.Batch) error {
	query := `
		UPDATE batches
		SET start_date = $2, end_date = $3, batch_size = $4, status = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		batch.ID,
		batch.StartDate,
		batch.EndDate,
		batch.BatchSize,
		batch.Status,
		batch.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update batch", zap.Error(err), zap.String("batch_id", batch.ID.String()))
		return fmt.Errorf("update batch %s: %w", batch.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("batch %s not found", batch.ID)
	}
	return nil
}

func (r *batchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete batch", zap.Error(err), zap.String("batch_id", id.String()))
		return fmt.Errorf("delete batch %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("batch %s not found", id)
	}
	r.log.Info("Batch deleted", zap.String("batch_id", id.String()))
	return nil
}

func (r *batchRepository) IncrementSeats(ctx context.Context, id uuid.UUID, seats int) (bool, error) {
	query := `
		UPDATE batches
		SET seats_booked = seats_booked + $2, updated_at = NOW()
		WHERE id = $1 AND seats_booked + $2 <= batch_size
	`

	result, err := r.db.Exec(ctx, query, id, seats)
	if err != nil {
		r.log.Error("Failed to increment seats",
			zap.Error(err),
			zap.String("batch_id", id.String()),
			zap.Int("seats", seats),
		)
		return false, fmt.Errorf("increment seats of batch %s: %w", id, err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *batchRepository) ReleaseSeats(ctx context.Context, id uuid.UUID, seats int) error {
	query := `
		UPDATE batches
		SET seats_booked = GREATEST(seats_booked - $2, 0), updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, id, seats); err != nil {
		r.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("batch_id", id.String()),
			zap.Int("seats", seats),
		)
		return fmt.Errorf("release seats of batch %s: %w", id, err)
	}
	return nil
}
