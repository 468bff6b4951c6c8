package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TechbyAbrar/match-making-app/internal/db"
)

// NotificationRepository provides data access for notifications.
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new repository bound to the given DB connection.
func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

func (r *NotificationRepository) Create(ctx context.Context, n *db.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListRecent returns the recipient's newest notifications.
func (r *NotificationRepository) ListRecent(ctx context.Context, recipientID uint64, limit int) ([]db.Notification, error) {
	var notifications []db.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flags a notification as read. A foreign or missing notification →
// gorm.ErrRecordNotFound so the caller can distinguish permission problems.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID uint64) error {
	res := r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
