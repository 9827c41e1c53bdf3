package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/careline/complaint-portal/internal/config"
	"github.com/careline/complaint-portal/internal/domain"
	"github.com/careline/complaint-portal/internal/events"
	"github.com/careline/complaint-portal/internal/persistence"
)

// NotificationService consumes domain events and emits delivery decisions.
// Transport is out of scope; each decision is handed to logging stubs the
// way the delivery edge would receive it. Redis provides an at-most-once
// suppression window so a re-published escalation does not re-notify the
// same recipient.
type NotificationService struct {
	dispatcher events.Dispatcher
	redis      *persistence.Redis
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, redis *persistence.Redis, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		redis:      redis,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.handleTicketEscalated)
	n.dispatcher.Subscribe(events.EventEscalationUnitUpdated, n.handleEscalationUnitUpdated)
	n.dispatcher.Subscribe(events.EventTicketResponded, n.handleTicketResponded)
	n.dispatcher.Subscribe(events.EventTicketFlagged, n.handleTicketFlagged)
}

func (n *NotificationService) handleTicketEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketEscalatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	for _, notification := range payload.Notifications {
		if n.suppressed(ctx, notification) {
			n.logger.Debug("notification suppressed within dedup window",
				zap.String("ticket_id", notification.TicketID),
				zap.String("recipient_admin_id", notification.RecipientAdminID))
			continue
		}
		n.deliver(ctx, notification)
	}
	return nil
}

func (n *NotificationService) handleEscalationUnitUpdated(_ context.Context, event events.Event) error {
	n.logger.Info("EscalationUnitUpdated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketResponded(_ context.Context, event events.Event) error {
	n.logger.Info("TicketResponded", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketFlagged(_ context.Context, event events.Event) error {
	n.logger.Info("TicketFlagged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

// suppressed claims the dedup key for this notification; a claim that fails
// open (redis unavailable) allows delivery rather than dropping it.
func (n *NotificationService) suppressed(ctx context.Context, notification domain.Notification) bool {
	window := n.cfg.DedupWindow()
	if window <= 0 || n.redis == nil || n.redis.Client == nil {
		return false
	}
	escalationID := ""
	if notification.EscalationID != nil {
		escalationID = *notification.EscalationID
	}
	key := fmt.Sprintf("notify:%s:%s:%s", notification.TicketID, escalationID, notification.RecipientAdminID)
	claimed, err := n.redis.Client.SetNX(ctx, key, time.Now().Unix(), window).Result()
	if err != nil {
		n.logger.Warn("notification dedup check failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return !claimed
}

func (n *NotificationService) deliver(ctx context.Context, notification domain.Notification) {
	n.sendEmailStub(ctx, notification)
	n.sendWebhookStub(ctx, notification)
}

func (n *NotificationService) sendEmailStub(_ context.Context, notification domain.Notification) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Info("notification email",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("recipient_admin_id", notification.RecipientAdminID),
		zap.String("ticket_id", notification.TicketID),
		zap.String("type", string(notification.Type)),
		zap.String("title", notification.Title))
}

func (n *NotificationService) sendWebhookStub(_ context.Context, notification domain.Notification) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Info("notification webhook",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", notification.TicketID),
		zap.String("type", string(notification.Type)))
}
