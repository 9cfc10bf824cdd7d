package repository

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MessageLogRepository interface {
	Create(ctx context.Context, msg *entity.MessageLog) error
	FindQueued(ctx context.Context, messageType string, limit int) ([]*entity.MessageLog, error)
	FindRecent(ctx context.Context, limit, offset int) ([]*entity.MessageLog, error)
	CountAll(ctx context.Context) (int64, error)
	MarkResult(ctx context.Context, id uuid.UUID, status entity.MessageStatus, errMsg *string, sentAt *time.Time) error
}

type messageLogRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewMessageLogRepository(db database.Querier, log *zap.Logger) MessageLogRepository {
	return &messageLogRepository{
		db:  db,
		log: log.With(zap.String("repository", "message_log")),
	}
}

const messageLogColumns = `id, user_id, booking_id, phone, message_type, body, status, error, created_at, sent_at`

func (r *messageLogRepository) Create(ctx context.Context, msg *entity.MessageLog) error {
	query := `
		INSERT INTO whatsapp_message_logs (` + messageLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		msg.ID,
		msg.UserID,
		msg.BookingID,
		msg.Phone,
		msg.MessageType,
		msg.Body,
		msg.Status,
		msg.Error,
		msg.CreatedAt,
		msg.SentAt,
	)
	if err != nil {
		r.log.Error("Failed to create message log",
			zap.Error(err),
			zap.String("message_type", msg.MessageType),
			zap.String("status", string(msg.Status)),
		)
		return fmt.Errorf("create message log: %w", err)
	}
	return nil
}

func (r *messageLogRepository) list(ctx context.Context, query string, args ...any) ([]*entity.MessageLog, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list message logs", zap.Error(err))
		return nil, fmt.Errorf("list message logs: %w", err)
	}
	defer rows.Close()

	var msgs []*entity.MessageLog
	for rows.Next() {
		var m entity.MessageLog
		err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.BookingID,
			&m.Phone,
			&m.MessageType,
			&m.Body,
			&m.Status,
			&m.Error,
			&m.CreatedAt,
			&m.SentAt,
		)
		if err != nil {
			r.log.Error("Failed to scan message log row", zap.Error(err))
			return nil, fmt.Errorf("scan message log row: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func (r *messageLogRepository) FindQueued(ctx context.Context, messageType string, limit int) ([]*entity.MessageLog, error) {
	query := `SELECT ` + messageLogColumns + `
		FROM whatsapp_message_logs
		WHERE status = 'queued' AND message_type = $1
		ORDER BY created_at
		LIMIT $2
	`
	return r.list(ctx, query, messageType, limit)
}

func (r *messageLogRepository) FindRecent(ctx context.Context, limit, offset int) ([]*entity.MessageLog, error) {
	query := `SELECT ` + messageLogColumns + `
		FROM whatsapp_message_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

func (r *messageLogRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM whatsapp_message_logs`).Scan(&count); err != nil {
		r.log.Error("Failed to count message logs", zap.Error(err))
		return 0, fmt.Errorf("count message logs: %w", err)
	}
	return count, nil
}

func (r *messageLogRepository) MarkResult(ctx context.Context, id uuid.UUID, status entity.MessageStatus, errMsg *string, sentAt *time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE whatsapp_message_logs SET status = $2, error = $3, sent_at = $4 WHERE id = $1`,
		id, string(status), errMsg, sentAt)
	if err != nil {
		r.log.Error("Failed to update message log", zap.Error(err), zap.String("message_id", id.String()))
		return fmt.Errorf("update message log %s: %w", id, err)
	}
	return nil
}
