package usecase

import (
	"context"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// messenger sends one WhatsApp message and records the attempt. A failed
// send is logged and returned but never touches booking state.
type messenger struct {
	repo   *repository.Repository
	sender notify.Sender
	now    func() time.Time
	log    *zap.Logger
}

func (m *messenger) deliver(ctx context.Context, user *entity.User, bookingID *uuid.UUID, messageType, body string) error {
	phone := ""
	if user != nil && user.Phone != nil {
		phone = *user.Phone
	}

	msg := &entity.MessageLog{
		BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: m.now()},
		BookingID:   bookingID,
		Phone:       phone,
		MessageType: messageType,
		Body:        body,
	}
	if user != nil {
		msg.UserID = &user.ID
	}

	sendErr := m.sender.Send(ctx, phone, body)
	if sendErr != nil {
		errMsg := sendErr.Error()
		msg.Status = entity.MessageStatusFailed
		msg.Error = &errMsg
		m.log.Warn("WhatsApp message failed",
			zap.Error(sendErr),
			zap.String("message_type", messageType),
			zap.String("phone", phone),
		)
	} else {
		sentAt := m.now()
		msg.Status = entity.MessageStatusSent
		msg.SentAt = &sentAt
	}

	if err := m.repo.MessageLog.Create(ctx, msg); err != nil {
		m.log.Warn("Failed to record message log", zap.Error(err), zap.String("message_type", messageType))
	}
	return sendErr
}

// resend retries a queued log row and records the outcome on it.
func (m *messenger) resend(ctx context.Context, msg *entity.MessageLog) error {
	sendErr := m.sender.Send(ctx, msg.Phone, msg.Body)

	var (
		status = entity.MessageStatusSent
		errMsg *string
		sentAt *time.Time
	)
	if sendErr != nil {
		status = entity.MessageStatusFailed
		e := sendErr.Error()
		errMsg = &e
	} else {
		t := m.now()
		sentAt = &t
	}

	if err := m.repo.MessageLog.MarkResult(ctx, msg.ID, status, errMsg, sentAt); err != nil {
		m.log.Warn("Failed to update message log", zap.Error(err), zap.String("message_id", msg.ID.String()))
	}
	return sendErr
}
