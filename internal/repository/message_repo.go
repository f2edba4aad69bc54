package repository

import (
	"time"

	"github.com/studyhub/studyhub-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	CreateDirect(msg *domain.DirectMessage) error
	CreateGroup(msg *domain.GroupMessage) error
	FindDirectByID(id int64) (*domain.DirectMessage, error)
	FindDirectByIDUnscoped(id int64) (*domain.DirectMessage, error)
	FindGroupByID(id int64) (*domain.GroupMessage, error)
	MarkAsRead(id int64) error
	MarkConversationRead(otherID, receiverID string) error
	ListConversations(userID string) ([]*domain.ConversationSummary, error)
	ListConversation(userID, otherID string, skip, take int) ([]*domain.DirectMessage, error)
	ListGroupMessages(groupID int64, skip, take int) ([]*domain.GroupMessage, error)
	SoftDeleteDirect(id int64) error
	SoftDeleteGroup(id int64) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// CreateDirect inserts a new direct message
func (r *messageRepository) CreateDirect(msg *domain.DirectMessage) error {
	return r.db.Create(msg).Error
}

// CreateGroup inserts a new group message
func (r *messageRepository) CreateGroup(msg *domain.GroupMessage) error {
	return r.db.Create(msg).Error
}

// FindDirectByID finds a non-deleted direct message by ID
func (r *messageRepository) FindDirectByID(id int64) (*domain.DirectMessage, error) {
	var msg domain.DirectMessage
	if err := r.db.Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindDirectByIDUnscoped finds a direct message including soft-deleted
// rows. Audit path only.
func (r *messageRepository) FindDirectByIDUnscoped(id int64) (*domain.DirectMessage, error) {
	var msg domain.DirectMessage
	if err := r.db.Unscoped().Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindGroupByID finds a non-deleted group message by ID
func (r *messageRepository) FindGroupByID(id int64) (*domain.GroupMessage, error) {
	var msg domain.GroupMessage
	if err := r.db.Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkAsRead marks a direct message as read. The is_read guard makes
// re-marking a no-op, so read_at keeps its first value.
func (r *messageRepository) MarkAsRead(id int64) error {
	now := time.Now()
	return r.db.Model(&domain.DirectMessage{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}

// MarkConversationRead marks every unread message from otherID to
// receiverID as read in one UPDATE
func (r *messageRepository) MarkConversationRead(otherID, receiverID string) error {
	now := time.Now()
	return r.db.Model(&domain.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherID, receiverID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}

// ListConversations groups all non-deleted direct messages touching
// userID by counterpart. Messages come back newest-first, so the first
// message seen per counterpart is its last message. Folding in Go keeps
// the query portable across MySQL and the sqlite test driver.
func (r *messageRepository) ListConversations(userID string) ([]*domain.ConversationSummary, error) {
	var msgs []*domain.DirectMessage
	err := r.db.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	byCounterpart := make(map[string]*domain.ConversationSummary)
	var order []string
	for _, m := range msgs {
		counterpart := m.SenderID
		if counterpart == userID {
			counterpart = m.ReceiverID
		}
		summary, ok := byCounterpart[counterpart]
		if !ok {
			summary = &domain.ConversationSummary{
				CounterpartID: counterpart,
				LastMessage:   m.ToResponse(),
			}
			byCounterpart[counterpart] = summary
			order = append(order, counterpart)
		}
		if m.ReceiverID == userID && !m.IsRead {
			summary.UnreadCount++
		}
	}

	result := make([]*domain.ConversationSummary, 0, len(order))
	for _, id := range order {
		result = append(result, byCounterpart[id])
	}
	return result, nil
}

// ListConversation returns the direct messages between two users,
// newest-first. The service reverses the page for oldest-first display.
func (r *messageRepository) ListConversation(userID, otherID string, skip, take int) ([]*domain.DirectMessage, error) {
	var msgs []*domain.DirectMessage
	err := r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID).
		Order("id DESC").
		Offset(skip).Limit(take).
		Find(&msgs).Error
	return msgs, err
}

// ListGroupMessages returns a group's messages, newest-first
func (r *messageRepository) ListGroupMessages(groupID int64, skip, take int) ([]*domain.GroupMessage, error) {
	var msgs []*domain.GroupMessage
	err := r.db.
		Where("group_id = ?", groupID).
		Order("id DESC").
		Offset(skip).Limit(take).
		Find(&msgs).Error
	return msgs, err
}

// SoftDeleteDirect soft-deletes a direct message
func (r *messageRepository) SoftDeleteDirect(id int64) error {
	result := r.db.Where("id = ?", id).Delete(&domain.DirectMessage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteGroup soft-deletes a group message
func (r *messageRepository) SoftDeleteGroup(id int64) error {
	result := r.db.Where("id = ?", id).Delete(&domain.GroupMessage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
