package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-engine/internal/config"
	"github.com/spec-kit/escalation-engine/internal/events"
)

// Sender delivers escalation notifications. Email delivery is delegated to
// the platform's mail pipeline and only logged here; webhook delivery posts
// the payload directly. It implements engine.NotificationSender.
type Sender struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
	client *http.Client
}

// NewSender creates the sender.
func NewSender(cfg config.NotificationConfig, logger *zap.Logger) *Sender {
	timeout := time.Duration(cfg.WebhookTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sender{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// Notify dispatches one notification to the recipient. The recipient is a
// staff id or role name resolved downstream; the engine treats it as opaque.
func (s *Sender) Notify(ctx context.Context, recipient, template string, payload map[string]any) error {
	s.sendEmailNotification(recipient, template, payload)
	if strings.TrimSpace(s.cfg.WebhookURL) == "" {
		return nil
	}
	return s.postWebhook(ctx, map[string]any{
		"recipient": recipient,
		"template":  template,
		"payload":   payload,
	})
}

// RegisterHandlers subscribes the sender to engine events so operational
// webhooks fire for escalations and batch completions.
func (s *Sender) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventEscalationExecuted, s.handleEscalationExecuted)
	dispatcher.Subscribe(events.EventBatchRunCompleted, s.handleBatchRunCompleted)
}

func (s *Sender) handleEscalationExecuted(ctx context.Context, event events.Event) error {
	s.logger.Info("EscalationExecuted", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	if strings.TrimSpace(s.cfg.WebhookURL) == "" {
		return nil
	}
	return s.postWebhook(ctx, event)
}

func (s *Sender) handleBatchRunCompleted(ctx context.Context, event events.Event) error {
	s.logger.Info("BatchRunCompleted", zap.Any("payload", event.Payload))
	return nil
}

func (s *Sender) sendEmailNotification(recipient, template string, payload map[string]any) {
	if strings.TrimSpace(s.cfg.EmailFrom) == "" {
		return
	}
	s.logger.Debug("queue escalation email",
		zap.String("from", s.cfg.EmailFrom),
		zap.String("recipient", recipient),
		zap.String("template", template),
		zap.Any("payload", payload))
}

func (s *Sender) postWebhook(ctx context.Context, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal webhook body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook post: unexpected status %d", resp.StatusCode)
	}
	return nil
}
