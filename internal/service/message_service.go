package service

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/studyhub/studyhub-backend/internal/common"
	"github.com/studyhub/studyhub-backend/internal/domain"
	"github.com/studyhub/studyhub-backend/internal/repository"
	"github.com/studyhub/studyhub-backend/internal/ws"
)

// MaxMessageBodyRunes is the upper bound on message body length,
// counted in code points.
const MaxMessageBodyRunes = 5000

// MessageService business logic for direct and group messages.
// Persistence always happens before publish; a failed push is swallowed
// because clients reconcile from storage on reconnect.
type MessageService interface {
	SendDirect(senderID string, req *domain.SendDirectMessageRequest) (*domain.DirectMessageResponse, error)
	SendGroup(authorID string, groupID int64, req *domain.SendGroupMessageRequest) (*domain.GroupMessageResponse, error)
	MarkMessageRead(requesterID string, messageID int64) error
	MarkConversationRead(requesterID, otherID string) error
	ListConversations(userID string) ([]*domain.ConversationSummary, error)
	ListConversation(userID, otherID string, skip, take int) ([]*domain.DirectMessageResponse, error)
	ListGroupMessages(requesterID string, groupID int64, skip, take int) ([]*domain.GroupMessageResponse, error)
	DeleteMessage(requesterID string, messageID int64) error
	DeleteGroupMessage(requesterID string, groupID, messageID int64) error
}

type messageService struct {
	repo       repository.MessageRepository
	memberRepo repository.MemberRepository
	groupRepo  repository.GroupRepository
	publisher  EventPublisher
}

// NewMessageService creates a new MessageService
func NewMessageService(
	repo repository.MessageRepository,
	memberRepo repository.MemberRepository,
	groupRepo repository.GroupRepository,
	publisher EventPublisher,
) MessageService {
	return &messageService{
		repo:       repo,
		memberRepo: memberRepo,
		groupRepo:  groupRepo,
		publisher:  publisher,
	}
}

func validateBody(body string) error {
	n := utf8.RuneCountInString(body)
	if n == 0 {
		return fmt.Errorf("%w: empty message body", common.ErrInvalidInput)
	}
	if n > MaxMessageBodyRunes {
		return fmt.Errorf("%w: message body exceeds %d characters", common.ErrInvalidInput, MaxMessageBodyRunes)
	}
	return nil
}

// SendDirect validates, persists and publishes a 1:1 message. The
// receiver gets message-received on their user channel; the sender's
// other devices get message-sent-ack carrying the message id so
// optimistic-UI duplicates collapse.
func (s *messageService) SendDirect(senderID string, req *domain.SendDirectMessageRequest) (*domain.DirectMessageResponse, error) {
	if senderID == req.ReceiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", common.ErrInvalidInput)
	}
	if err := validateBody(req.Body); err != nil {
		return nil, err
	}

	exists, err := s.memberRepo.Exists(req.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrReceiverNotFound
	}

	msg := &domain.DirectMessage{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Body:       req.Body,
		SentAt:     time.Now(),
		IsRead:     false,
	}
	if err := s.repo.CreateDirect(msg); err != nil {
		return nil, err
	}

	resp := msg.ToResponse()
	s.publisher.Publish(ws.UserChannel(msg.ReceiverID), EventMessageReceived, resp)
	s.publisher.Publish(ws.UserChannel(senderID), EventMessageSentAck, resp)
	return resp, nil
}

// SendGroup validates approved membership, persists and publishes a
// group message to the group channel
func (s *messageService) SendGroup(authorID string, groupID int64, req *domain.SendGroupMessageRequest) (*domain.GroupMessageResponse, error) {
	if err := validateBody(req.Body); err != nil {
		return nil, err
	}

	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrGroupNotFound
		}
		return nil, err
	}

	approved, err := s.groupRepo.IsApprovedMember(authorID, groupID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, common.ErrNotGroupMember
	}

	msg := &domain.GroupMessage{
		GroupID:  groupID,
		AuthorID: authorID,
		Body:     req.Body,
		PostedAt: time.Now(),
	}
	if err := s.repo.CreateGroup(msg); err != nil {
		return nil, err
	}

	resp := msg.ToResponse()
	s.publisher.Publish(ws.GroupChannel(groupID), EventGroupMessageReceived, resp)
	return resp, nil
}

// MarkMessageRead flips the read flag of one message. Only the receiver
// may do this; re-marking an already-read message is a no-op. The
// original sender gets a message-read receipt on their user channel.
func (s *messageService) MarkMessageRead(requesterID string, messageID int64) error {
	msg, err := s.repo.FindDirectByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	if msg.ReceiverID != requesterID {
		return common.ErrForbidden
	}
	if msg.IsRead {
		return nil
	}
	if err := s.repo.MarkAsRead(messageID); err != nil {
		return err
	}

	s.publisher.Publish(ws.UserChannel(msg.SenderID), EventMessageRead, map[string]interface{}{
		"message_id": messageID,
		"reader_id":  requesterID,
	})
	return nil
}

// MarkConversationRead marks every unread message from otherID to the
// requester as read, then sends a conversation-read receipt to otherID
func (s *messageService) MarkConversationRead(requesterID, otherID string) error {
	if err := s.repo.MarkConversationRead(otherID, requesterID); err != nil {
		return err
	}

	s.publisher.Publish(ws.UserChannel(otherID), EventConversationRead, map[string]interface{}{
		"reader_id": requesterID,
	})
	return nil
}

// ListConversations returns the derived conversation view for a user
func (s *messageService) ListConversations(userID string) ([]*domain.ConversationSummary, error) {
	return s.repo.ListConversations(userID)
}

// ListConversation returns a page of the 1:1 history, oldest-first for
// display. The repository pages newest-first; the page is reversed here.
func (s *messageService) ListConversation(userID, otherID string, skip, take int) ([]*domain.DirectMessageResponse, error) {
	skip, take = normalizePage(skip, take)
	msgs, err := s.repo.ListConversation(userID, otherID, skip, take)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.DirectMessageResponse, len(msgs))
	for i, m := range msgs {
		responses[len(msgs)-1-i] = m.ToResponse()
	}
	return responses, nil
}

// ListGroupMessages returns a page of a group's history, oldest-first.
// Reading requires approved membership, same as posting.
func (s *messageService) ListGroupMessages(requesterID string, groupID int64, skip, take int) ([]*domain.GroupMessageResponse, error) {
	approved, err := s.groupRepo.IsApprovedMember(requesterID, groupID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, common.ErrNotGroupMember
	}

	skip, take = normalizePage(skip, take)
	msgs, err := s.repo.ListGroupMessages(groupID, skip, take)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.GroupMessageResponse, len(msgs))
	for i, m := range msgs {
		responses[len(msgs)-1-i] = m.ToResponse()
	}
	return responses, nil
}

// DeleteMessage soft-deletes a direct message. Sender only; the row is
// retained for audit.
func (s *messageService) DeleteMessage(requesterID string, messageID int64) error {
	msg, err := s.repo.FindDirectByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	if msg.SenderID != requesterID {
		return common.ErrForbidden
	}
	return s.repo.SoftDeleteDirect(messageID)
}

// DeleteGroupMessage soft-deletes a group message. Allowed for the
// author or the group owner; subscribers get group-message-deleted.
func (s *messageService) DeleteGroupMessage(requesterID string, groupID, messageID int64) error {
	msg, err := s.repo.FindGroupByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	if msg.GroupID != groupID {
		return common.ErrMessageNotFound
	}

	group, err := s.groupRepo.FindByID(groupID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if !domain.CanDeleteGroupMessage(requesterID, msg, group) {
		return common.ErrForbidden
	}

	if err := s.repo.SoftDeleteGroup(messageID); err != nil {
		return err
	}

	s.publisher.Publish(ws.GroupChannel(groupID), EventGroupMessageDeleted, map[string]interface{}{
		"message_id": messageID,
		"group_id":   groupID,
	})
	return nil
}

func normalizePage(skip, take int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if take < 1 || take > 100 {
		take = 30
	}
	return skip, take
}
