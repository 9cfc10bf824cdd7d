// Package notify delivers outbound WhatsApp messages.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// Sender delivers one text message to one phone number.
type Sender interface {
	Send(ctx context.Context, phone, body string) error
}

// NewSender returns the HTTP provider client when an API URL is configured
// and a log-only sender otherwise.
func NewSender(cfg utils.WhatsAppConfig, log *zap.Logger) Sender {
	if cfg.APIURL == "" {
		log.Warn("WhatsApp API URL not configured, messages will only be logged")
		return NewLogSender(log)
	}
	return NewWhatsAppClient(cfg, nil, log)
}

type WhatsAppClient struct {
	url   string
	token string
	http  *http.Client
	log   *zap.Logger
}

func NewWhatsAppClient(cfg utils.WhatsAppConfig, client *http.Client, log *zap.Logger) *WhatsAppClient {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &WhatsAppClient{
		url:   cfg.APIURL,
		token: cfg.APIToken,
		http:  client,
		log:   log.With(zap.String("component", "whatsapp")),
	}
}

type sendPayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type providerReply struct {
	Status bool   `json:"status"`
	Detail string `json:"detail,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (c *WhatsAppClient) Send(ctx context.Context, phone, body string) error {
	normalized, err := normalize(phone)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(sendPayload{Phone: normalized, Message: body})
	if err != nil {
		return fmt.Errorf("encode whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("WhatsApp provider unreachable", zap.Error(err), zap.String("phone", normalized))
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 300 {
		c.log.Warn("WhatsApp provider rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("phone", normalized),
			zap.ByteString("body", raw),
		)
		return fmt.Errorf("whatsapp provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	// some providers answer 200 with status=false
	var reply providerReply
	if len(raw) > 0 && json.Unmarshal(raw, &reply) == nil && !reply.Status && reply.Reason != "" {
		return fmt.Errorf("whatsapp provider refused message: %s", reply.Reason)
	}

	c.log.Debug("WhatsApp message sent", zap.String("phone", normalized))
	return nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("component", "whatsapp_log"))}
}

func (s *LogSender) Send(_ context.Context, phone, body string) error {
	normalized, err := normalize(phone)
	if err != nil {
		return err
	}
	s.log.Info("WhatsApp message (not delivered)", zap.String("phone", normalized), zap.String("body", body))
	return nil
}

func normalize(phone string) (string, error) {
	normalized := utils.NormalizePhone(phone)
	if len(normalized) < 10 || len(normalized) > 15 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}
	return normalized, nil
}
