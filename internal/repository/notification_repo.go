package repository

import (
	"errors"
	"time"

	"github.com/studyhub/studyhub-backend/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository handles notification data operations
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification
func (r *NotificationRepository) Create(n *domain.Notification) error {
	return r.db.Create(n).Error
}

// FindByID returns a notification by ID, or nil when not found
func (r *NotificationRepository) FindByID(id int64) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// GetUnviewedCount returns the number of unviewed notifications for a member
func (r *NotificationRepository) GetUnviewedCount(memberID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("member_id = ? AND viewed = ?", memberID, false).
		Count(&count).Error
	return count, err
}

// GetList returns paginated notifications for a member, newest-first
func (r *NotificationRepository) GetList(memberID string, offset, limit int) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	if err := r.db.Model(&domain.Notification{}).
		Where("member_id = ?", memberID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.Where("member_id = ?", memberID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkAsViewed marks a notification as viewed. The viewed guard makes
// the transition monotonic and idempotent.
func (r *NotificationRepository) MarkAsViewed(id int64) error {
	now := time.Now()
	return r.db.Model(&domain.Notification{}).
		Where("id = ? AND viewed = ?", id, false).
		Updates(map[string]interface{}{
			"viewed":    true,
			"viewed_at": now,
		}).Error
}

// MarkAllAsViewed marks all unviewed notifications as viewed for a member
func (r *NotificationRepository) MarkAllAsViewed(memberID string) error {
	now := time.Now()
	return r.db.Model(&domain.Notification{}).
		Where("member_id = ? AND viewed = ?", memberID, false).
		Updates(map[string]interface{}{
			"viewed":    true,
			"viewed_at": now,
		}).Error
}

// SoftDelete soft-deletes a notification by ID
func (r *NotificationRepository) SoftDelete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&domain.Notification{}).Error
}

// ExistsRecentOfType reports whether a notification linked to the given
// event with the given type was created after since. This is the
// scheduler's dedup primitive: one COUNT query, keyed (event_id, type)
// within a trailing window. Duplicates outside the window are allowed
// (a re-scheduled meeting notifies again).
func (r *NotificationRepository) ExistsRecentOfType(eventID int64, ntype string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("event_id = ? AND type = ? AND created_at > ?", eventID, ntype, since).
		Count(&count).Error
	return count > 0, err
}
