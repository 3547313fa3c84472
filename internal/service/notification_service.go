package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ecoeats/internal/config"
	"github.com/spec-kit/ecoeats/internal/events"
)

// NotificationService handles emitting notifications for domain events.
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
	n.dispatcher.Subscribe(events.EventRequestSubmitted, n.handleRequestSubmitted)
	n.dispatcher.Subscribe(events.EventRequestReviewed, n.handleRequestReviewed)
	n.dispatcher.Subscribe(events.EventVoucherIssued, n.handleVoucherIssued)
	n.dispatcher.Subscribe(events.EventVoucherRedeemed, n.handleVoucherRedeemed)
	n.dispatcher.Subscribe(events.EventVoucherRevoked, n.handleVoucherRevoked)
	n.dispatcher.Subscribe(events.EventClaimCreated, n.handleClaimCreated)
	n.dispatcher.Subscribe(events.EventClaimPickedUp, n.handleClaimPickedUp)
	n.dispatcher.Subscribe(events.EventPartnerJoined, n.handlePartnerJoined)
}

func (n *NotificationService) handleRequestSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestSubmitted", zap.String("request_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleRequestReviewed(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestReviewed", zap.String("request_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleVoucherIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("VoucherIssued", zap.String("voucher_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleVoucherRedeemed(ctx context.Context, event events.Event) error {
	n.logger.Info("VoucherRedeemed", zap.String("voucher_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleVoucherRevoked(ctx context.Context, event events.Event) error {
	n.logger.Info("VoucherRevoked", zap.String("voucher_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleClaimCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ClaimCreated", zap.String("claim_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleClaimPickedUp(ctx context.Context, event events.Event) error {
	n.logger.Info("ClaimPickedUp", zap.String("claim_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePartnerJoined(ctx context.Context, event events.Event) error {
	n.logger.Info("PartnerJoined", zap.String("partner_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
