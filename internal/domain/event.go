package domain

import (
	"time"

	"gorm.io/gorm"
)

// ScheduledEvent represents a scheduled group meeting. The reminder
// scheduler scans these; ExcludeMemberID, when set, is skipped during
// notification fan-out (e.g. the organizer who created the event).
type ScheduledEvent struct {
	ID              int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GroupID         int64          `gorm:"column:group_id;index" json:"group_id"`
	Title           string         `gorm:"column:title" json:"title"`
	StartTime       time.Time      `gorm:"column:start_time;index" json:"start_time"`
	Canceled        bool           `gorm:"column:canceled" json:"canceled"`
	ExcludeMemberID *string        `gorm:"column:exclude_member_id" json:"exclude_member_id,omitempty"`
	CreatedAt       time.Time      `gorm:"column:created_at" json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (ScheduledEvent) TableName() string {
	return "scheduled_events"
}
