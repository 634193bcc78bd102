package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/models"
)

// NotificationRepository persists outbox rows for best-effort notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	UpdateState(ctx context.Context, id uint, state models.NotificationState) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository instantiates the repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) UpdateState(ctx context.Context, id uint, state models.NotificationState) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("state", state).Error
}
