package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/acadhub/apms-go-api/internal/models"
	"github.com/acadhub/apms-go-api/internal/observability"
	"github.com/acadhub/apms-go-api/internal/repository"
)

// EmailSender delivers a single message over the configured mail channel.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotificationDispatcher consumes outbox events and performs delivery.
// Delivery failure only marks the outbox row failed; the workflow that
// enqueued the notification has already committed.
type NotificationDispatcher struct {
	repo    repository.NotificationRepository
	nats    *nats.Conn
	subject string
	sender  EmailSender
	logger  zerolog.Logger
}

// NewNotificationDispatcher constructs the dispatcher.
func NewNotificationDispatcher(repo repository.NotificationRepository, natsConn *nats.Conn, channelBase string, sender EmailSender, logger zerolog.Logger) *NotificationDispatcher {
	subject := ""
	if channelBase != "" {
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &NotificationDispatcher{
		repo:    repo,
		nats:    natsConn,
		subject: subject,
		sender:  sender,
		logger:  logger.With().Str("component", "notification_dispatcher").Logger(),
	}
}

// Start subscribes to the outbox subject and delivers events until ctx ends.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	if d.nats == nil || d.subject == "" || d.sender == nil {
		d.logger.Info().Msg("notification dispatcher disabled")
		return
	}

	sub, err := d.nats.QueueSubscribe(d.subject, "apms-notifications", func(msg *nats.Msg) {
		d.handle(ctx, msg.Data)
	})
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to subscribe to notification subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			d.logger.Warn().Err(err).Msg("failed to drain notification subscription")
		}
	}()
}

func (d *NotificationDispatcher) handle(ctx context.Context, data []byte) {
	var event notificationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		d.logger.Warn().Err(err).Msg("invalid notification event payload")
		return
	}

	message := event.Message
	if err := d.sender.Send(ctx, message.Recipient, message.Subject, message.Body); err != nil {
		d.logger.Warn().Err(err).
			Str("recipient", message.Recipient).
			Uint("outbox_id", event.OutboxID).
			Msg("notification delivery failed")
		observability.NotificationsProcessed().WithLabelValues(string(models.NotificationFailed)).Inc()
		d.markState(ctx, event.OutboxID, models.NotificationFailed)
		return
	}

	observability.NotificationsProcessed().WithLabelValues(string(models.NotificationSent)).Inc()
	d.markState(ctx, event.OutboxID, models.NotificationSent)
}

func (d *NotificationDispatcher) markState(ctx context.Context, id uint, state models.NotificationState) {
	if id == 0 {
		return
	}
	if err := d.repo.UpdateState(ctx, id, state); err != nil {
		d.logger.Warn().Err(err).Uint("outbox_id", id).Msg("failed to update notification state")
	}
}
