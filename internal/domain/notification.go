package domain

import (
	"time"

	"gorm.io/gorm"
)

// Notification types
const (
	NotificationTypeUpcomingEvent = "upcoming_event"
)

// Notification priorities
const (
	NotificationPriorityNormal = "normal"
	NotificationPriorityHigh   = "high"
)

// Notification represents a system-authored per-member notification.
// The viewed flag flips once and stays set; soft delete is owner-only.
type Notification struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MemberID  string         `gorm:"column:member_id;index:idx_ntf_member" json:"member_id"`
	Type      string         `gorm:"column:type;index:idx_ntf_event,priority:2" json:"type"`
	Title     string         `gorm:"column:title" json:"title"`
	Body      string         `gorm:"column:body" json:"body"`
	GroupID   *int64         `gorm:"column:group_id" json:"group_id,omitempty"`
	EventID   *int64         `gorm:"column:event_id;index:idx_ntf_event,priority:1" json:"event_id,omitempty"`
	Link      string         `gorm:"column:link" json:"link,omitempty"`
	Priority  string         `gorm:"column:priority" json:"priority"`
	EventDate *time.Time     `gorm:"column:event_date" json:"event_date,omitempty"`
	Viewed    bool           `gorm:"column:viewed" json:"viewed"`
	ViewedAt  *time.Time     `gorm:"column:viewed_at" json:"viewed_at,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationItem represents a single notification in list responses
type NotificationItem struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	GroupID   *int64 `json:"group_id,omitempty"`
	EventID   *int64 `json:"event_id,omitempty"`
	Link      string `json:"link,omitempty"`
	Priority  string `json:"priority"`
	EventDate string `json:"event_date,omitempty"`
	Viewed    bool   `json:"viewed"`
	CreatedAt string `json:"created_at"`
}

// ToItem converts Notification to NotificationItem
func (n *Notification) ToItem() NotificationItem {
	item := NotificationItem{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		GroupID:   n.GroupID,
		EventID:   n.EventID,
		Link:      n.Link,
		Priority:  n.Priority,
		Viewed:    n.Viewed,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.EventDate != nil {
		item.EventDate = n.EventDate.Format(time.RFC3339)
	}
	return item
}

// NotificationSummaryResponse represents unviewed count response
type NotificationSummaryResponse struct {
	TotalUnviewed int64 `json:"total_unviewed"`
}
