package domain

import (
	"time"

	"gorm.io/gorm"
)

// DirectMessage represents a 1:1 private message between two members.
// The read flag is mutated only by the receiver, soft delete only by
// the sender. ReadAt is set iff IsRead is true; SentAt never changes
// after creation.
type DirectMessage struct {
	ID         int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SenderID   string         `gorm:"column:sender_id;index:idx_dm_sender" json:"sender_id"`
	ReceiverID string         `gorm:"column:receiver_id;index:idx_dm_receiver" json:"receiver_id"`
	Body       string         `gorm:"column:body;type:text" json:"body"`
	SentAt     time.Time      `gorm:"column:sent_at" json:"sent_at"`
	IsRead     bool           `gorm:"column:is_read" json:"is_read"`
	ReadAt     *time.Time     `gorm:"column:read_at" json:"read_at,omitempty"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (DirectMessage) TableName() string {
	return "direct_messages"
}

// GroupMessage represents a broadcast message posted to a study group.
// Author must be an approved member at post time.
type GroupMessage struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GroupID   int64          `gorm:"column:group_id;index:idx_gm_group" json:"group_id"`
	AuthorID  string         `gorm:"column:author_id" json:"author_id"`
	Body      string         `gorm:"column:body;type:text" json:"body"`
	PostedAt  time.Time      `gorm:"column:posted_at" json:"posted_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (GroupMessage) TableName() string {
	return "group_messages"
}

// SendDirectMessageRequest represents a send direct message request
type SendDirectMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

// SendGroupMessageRequest represents a post-to-group request
type SendGroupMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// DirectMessageResponse represents a direct message in API responses
type DirectMessageResponse struct {
	ID         int64  `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Body       string `json:"body"`
	SentAt     string `json:"sent_at"`
	IsRead     bool   `json:"is_read"`
	ReadAt     string `json:"read_at,omitempty"`
}

// ToResponse converts DirectMessage to DirectMessageResponse
func (m *DirectMessage) ToResponse() *DirectMessageResponse {
	resp := &DirectMessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Body:       m.Body,
		SentAt:     m.SentAt.Format(time.RFC3339),
		IsRead:     m.IsRead,
	}
	if m.ReadAt != nil {
		resp.ReadAt = m.ReadAt.Format(time.RFC3339)
	}
	return resp
}

// GroupMessageResponse represents a group message in API responses
type GroupMessageResponse struct {
	ID       int64  `json:"id"`
	GroupID  int64  `json:"group_id"`
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
	PostedAt string `json:"posted_at"`
}

// ToResponse converts GroupMessage to GroupMessageResponse
func (m *GroupMessage) ToResponse() *GroupMessageResponse {
	return &GroupMessageResponse{
		ID:       m.ID,
		GroupID:  m.GroupID,
		AuthorID: m.AuthorID,
		Body:     m.Body,
		PostedAt: m.PostedAt.Format(time.RFC3339),
	}
}

// ConversationSummary is a derived view over direct messages: the most
// recent message exchanged with a counterpart plus the unread count.
// It is never persisted.
type ConversationSummary struct {
	CounterpartID string                 `json:"counterpart_id"`
	LastMessage   *DirectMessageResponse `json:"last_message"`
	UnreadCount   int64                  `json:"unread_count"`
}
