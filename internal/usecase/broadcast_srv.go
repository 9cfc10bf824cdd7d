package usecase

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BroadcastService interface {
	QueueBroadcast(ctx context.Context, staffID string, req *request.BroadcastRequest) (*response.BroadcastResponse, error)
	ListMessages(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MessageLogResponse], error)
}

type broadcastService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewBroadcastService(repo *repository.Repository, now func() time.Time, log *zap.Logger) BroadcastService {
	return &broadcastService{
		repo: repo,
		now:  now,
		log:  log.With(zap.String("service", "broadcast")),
	}
}

// QueueBroadcast writes one queued message per opted-in user. Nothing is
// sent here; the send-broadcasts job drains the queue.
func (s *broadcastService) QueueBroadcast(ctx context.Context, staffID string, req *request.BroadcastRequest) (*response.BroadcastResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	recipients, err := s.repo.User.FindWhatsAppRecipients(ctx)
	if err != nil {
		s.log.Error("Failed to load broadcast recipients", zap.Error(err))
		return nil, fmt.Errorf("load recipients: %w", err)
	}

	now := s.now()
	queued := 0
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		for _, user := range recipients {
			if !user.CanReceiveWhatsApp() {
				continue
			}
			msg := &entity.MessageLog{
				BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
				UserID:      &user.ID,
				Phone:       *user.Phone,
				MessageType: entity.MessageTypeBroadcast,
				Body:        req.Message,
				Status:      entity.MessageStatusQueued,
			}
			if err := tx.MessageLog.Create(ctx, msg); err != nil {
				return err
			}
			queued++
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to queue broadcast", zap.Error(err))
		return nil, fmt.Errorf("queue broadcast: %w", err)
	}

	s.log.Info("Broadcast queued", zap.Int("recipients", queued), zap.String("queued_by", staffID))
	return &response.BroadcastResponse{Queued: queued}, nil
}

func (s *broadcastService) ListMessages(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MessageLogResponse], error) {
	msgs, err := s.repo.MessageLog.FindRecent(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	total, err := s.repo.MessageLog.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	items := make([]response.MessageLogResponse, len(msgs))
	for i, msg := range msgs {
		items[i] = response.MessageLogToResponse(msg)
	}
	return response.NewPaginatedResponse(items, req.CurrentPage(), req.Limit(), total), nil
}
