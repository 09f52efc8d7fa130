package repository

import (
	"context"

	"RefDesk/internal/model"

	"gorm.io/gorm"
)

// NotificationRepository appends and reads the notification log.
// Notifications are write-once; there is no update or delete.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListForAdmins(ctx context.Context) ([]*model.Notification, error)
	ListForReferee(ctx context.Context, refereeID uint64) ([]*model.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates the gorm-backed NotificationRepository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListForAdmins(ctx context.Context) ([]*model.Notification, error) {
	var list []*model.Notification
	if err := r.db.WithContext(ctx).
		Where("recipient = ?", model.RecipientAdmin).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepository) ListForReferee(ctx context.Context, refereeID uint64) ([]*model.Notification, error) {
	var list []*model.Notification
	if err := r.db.WithContext(ctx).
		Where("recipient = ? AND referee_id = ?", model.RecipientReferee, refereeID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
