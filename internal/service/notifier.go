package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/acadhub/apms-go-api/internal/models"
	"github.com/acadhub/apms-go-api/internal/repository"
)

// NotificationMessage is a best-effort message addressed to one recipient.
type NotificationMessage struct {
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Body      string                 `json:"body"`
	Kind      string                 `json:"kind"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// notificationEvent is the wire format published to the outbox subject.
type notificationEvent struct {
	OutboxID uint                `json:"outbox_id"`
	Message  NotificationMessage `json:"message"`
}

// Notifier enqueues notifications for out-of-band delivery. Enqueueing never
// fails the calling workflow; any error is logged and swallowed.
type Notifier interface {
	Notify(ctx context.Context, message NotificationMessage)
}

type outboxNotifier struct {
	repo    repository.NotificationRepository
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewOutboxNotifier constructs a Notifier that persists an outbox row and
// publishes an event for the dispatcher to deliver.
func NewOutboxNotifier(repo repository.NotificationRepository, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) Notifier {
	subject := ""
	if channelBase != "" {
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &outboxNotifier{
		repo:    repo,
		nats:    natsConn,
		subject: subject,
		logger:  logger.With().Str("component", "outbox_notifier").Logger(),
	}
}

func (n *outboxNotifier) Notify(ctx context.Context, message NotificationMessage) {
	if strings.TrimSpace(message.Recipient) == "" {
		return
	}

	row := models.Notification{
		Recipient: message.Recipient,
		Subject:   message.Subject,
		Body:      message.Body,
		Kind:      message.Kind,
		Payload:   message.Payload,
		State:     models.NotificationPending,
	}

	if err := n.repo.Create(ctx, &row); err != nil {
		n.logger.Warn().Err(err).Str("recipient", message.Recipient).Msg("failed to persist notification outbox row")
		return
	}

	if n.nats == nil || n.subject == "" {
		return
	}

	event := notificationEvent{OutboxID: row.ID, Message: message}
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn().Err(err).Msg("failed to marshal notification event")
		return
	}

	if err := n.nats.Publish(n.subject, payload); err != nil {
		n.logger.Warn().Err(err).Uint("outbox_id", row.ID).Msg("failed to publish notification event")
	}
}

// NopNotifier discards all notifications. Used when no delivery channel is
// configured and in tests.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, NotificationMessage) {}
