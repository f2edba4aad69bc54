package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studyhub/studyhub-backend/internal/common"
	"github.com/studyhub/studyhub-backend/internal/domain"
	"github.com/studyhub/studyhub-backend/internal/repository"
	"github.com/studyhub/studyhub-backend/internal/ws"
)

const (
	unviewedCountKeyPrefix = "ntf:unviewed:"
	unviewedCountTTL       = 30 * time.Second
)

// NotificationService handles notification business logic. All
// notifications are system-authored; members only view and delete.
type NotificationService struct {
	repo        *repository.NotificationRepository
	publisher   EventPublisher
	redisClient *redis.Client // optional unviewed-count cache
}

// NewNotificationService creates a new NotificationService.
// redisClient may be nil; counts are then always read from the store.
func NewNotificationService(repo *repository.NotificationRepository, publisher EventPublisher, redisClient *redis.Client) *NotificationService {
	return &NotificationService{
		repo:        repo,
		publisher:   publisher,
		redisClient: redisClient,
	}
}

// GetUnviewedCount returns the unviewed notification count for a member
func (s *NotificationService) GetUnviewedCount(ctx context.Context, memberID string) (*domain.NotificationSummaryResponse, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, unviewedCountKeyPrefix+memberID).Result(); err == nil {
			if count, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
				return &domain.NotificationSummaryResponse{TotalUnviewed: count}, nil
			}
		}
	}

	count, err := s.repo.GetUnviewedCount(memberID)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		s.redisClient.Set(ctx, unviewedCountKeyPrefix+memberID, count, unviewedCountTTL) //nolint:errcheck
	}
	return &domain.NotificationSummaryResponse{TotalUnviewed: count}, nil
}

// GetList returns notifications for a member, newest-first
func (s *NotificationService) GetList(memberID string, skip, take int) ([]domain.NotificationItem, int64, error) {
	skip, take = normalizePage(skip, take)
	notifications, total, err := s.repo.GetList(memberID, skip, take)
	if err != nil {
		return nil, 0, err
	}

	items := make([]domain.NotificationItem, len(notifications))
	for i, n := range notifications {
		items[i] = n.ToItem()
	}
	return items, total, nil
}

// MarkAsViewed marks a notification as viewed after ownership check.
// The flag is monotonic: re-marking is a no-op, not an error.
func (s *NotificationService) MarkAsViewed(ctx context.Context, memberID string, notificationID int64) error {
	n, err := s.repo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return common.ErrNotFound
	}
	if n.MemberID != memberID {
		return common.ErrForbidden
	}
	if n.Viewed {
		return nil
	}
	if err := s.repo.MarkAsViewed(notificationID); err != nil {
		return err
	}
	s.invalidateCount(ctx, memberID)
	return nil
}

// MarkAllAsViewed marks all notifications as viewed for a member
func (s *NotificationService) MarkAllAsViewed(ctx context.Context, memberID string) error {
	if err := s.repo.MarkAllAsViewed(memberID); err != nil {
		return err
	}
	s.invalidateCount(ctx, memberID)
	return nil
}

// Delete soft-deletes a notification after ownership check
func (s *NotificationService) Delete(ctx context.Context, memberID string, notificationID int64) error {
	n, err := s.repo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return common.ErrNotFound
	}
	if n.MemberID != memberID {
		return common.ErrForbidden
	}
	if err := s.repo.SoftDelete(notificationID); err != nil {
		return err
	}
	s.invalidateCount(ctx, memberID)
	return nil
}

// HasRecentForEvent reports whether an upcoming-event notification was
// already created for the event within the window ending now
func (s *NotificationService) HasRecentForEvent(eventID int64, window time.Duration) (bool, error) {
	return s.repo.ExistsRecentOfType(eventID, domain.NotificationTypeUpcomingEvent, time.Now().Add(-window))
}

// NotifyUpcomingEvent creates one high-priority upcoming-event
// notification per member and pushes new-notification to each member's
// user channel. A failure for one member does not stop the others; the
// first error is returned after the loop.
func (s *NotificationService) NotifyUpcomingEvent(ctx context.Context, event *domain.ScheduledEvent, memberIDs []string) error {
	var firstErr error
	for _, memberID := range memberIDs {
		startTime := event.StartTime
		n := &domain.Notification{
			MemberID:  memberID,
			Type:      domain.NotificationTypeUpcomingEvent,
			Title:     "Upcoming meeting: " + event.Title,
			Body:      fmt.Sprintf("%q starts %s", event.Title, event.StartTime.Format("Jan 2 15:04")),
			GroupID:   &event.GroupID,
			EventID:   &event.ID,
			Link:      fmt.Sprintf("/groups/%d/events/%d", event.GroupID, event.ID),
			Priority:  domain.NotificationPriorityHigh,
			EventDate: &startTime,
			CreatedAt: time.Now(),
		}
		if err := s.repo.Create(n); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.invalidateCount(ctx, memberID)
		s.publisher.Publish(ws.UserChannel(memberID), EventNewNotification, n.ToItem())
	}
	return firstErr
}

func (s *NotificationService) invalidateCount(ctx context.Context, memberID string) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, unviewedCountKeyPrefix+memberID) //nolint:errcheck
	}
}
