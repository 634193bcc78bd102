package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationState tracks outbox delivery progress.
type NotificationState string

const (
	// NotificationPending means the event is queued but not yet handed to
	// the delivery channel.
	NotificationPending NotificationState = "pending"
	// NotificationSent means the delivery channel accepted the message.
	NotificationSent NotificationState = "sent"
	// NotificationFailed means delivery failed; the workflow that enqueued
	// it has already succeeded, so the failure is only logged.
	NotificationFailed NotificationState = "failed"
)

// Notification is an outbox row for a best-effort message to a student or
// faculty member. Core workflows persist the row and publish an event; a
// separate dispatcher performs delivery so workflow success never depends on
// the mail channel.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Recipient string            `gorm:"size:255;not null;index" json:"recipient"`
	Subject   string            `gorm:"size:255;not null" json:"subject"`
	Body      string            `gorm:"type:text" json:"body"`
	Kind      string            `gorm:"size:64;not null" json:"kind"`
	Payload   datatypes.JSONMap `gorm:"type:json" json:"payload"`
	State     NotificationState `gorm:"size:16;not null;default:pending" json:"state"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
