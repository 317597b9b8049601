package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/subscription-service/internal/config"
	"github.com/spec-kit/subscription-service/internal/events"
)

// NotificationService handles emitting notifications for lifecycle events.
// Delivery is stubbed; this is the seam for a future mail/webhook sender.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSubscriptionCreated, n.handleSubscriptionEvent)
	n.dispatcher.Subscribe(events.EventSubscriptionPlanChanged, n.handleSubscriptionEvent)
	n.dispatcher.Subscribe(events.EventSubscriptionCancelled, n.handleSubscriptionEvent)
	n.dispatcher.Subscribe(events.EventSubscriptionRenewed, n.handleSubscriptionEvent)
	n.dispatcher.Subscribe(events.EventSubscriptionExpired, n.handleSubscriptionEvent)
	n.dispatcher.Subscribe(events.EventPlanCreated, n.handlePlanEvent)
	n.dispatcher.Subscribe(events.EventPlanDeleted, n.handlePlanEvent)
}

func (n *NotificationService) handleSubscriptionEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("user_id", event.UserID),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePlanEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
