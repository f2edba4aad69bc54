package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-backend/internal/common"
	"github.com/studyhub/studyhub-backend/internal/domain"
	"github.com/studyhub/studyhub-backend/internal/repository"
	"github.com/studyhub/studyhub-backend/internal/ws"
)

func newNotificationService(t *testing.T, db *gorm.DB, pub *fakePublisher) *NotificationService {
	t.Helper()
	return NewNotificationService(repository.NewNotificationRepository(db), pub, nil)
}

func seedNotification(t *testing.T, db *gorm.DB, memberID string) *domain.Notification {
	t.Helper()
	n := &domain.Notification{
		MemberID:  memberID,
		Type:      domain.NotificationTypeUpcomingEvent,
		Title:     "Upcoming meeting",
		Priority:  domain.NotificationPriorityHigh,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestMarkAsViewedOwnerOnly(t *testing.T) {
	db := setupDB(t)
	pub := &fakePublisher{}
	svc := newNotificationService(t, db, pub)
	ctx := context.Background()

	n := seedNotification(t, db, "alice")

	err := svc.MarkAsViewed(ctx, "bob", n.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	require.NoError(t, svc.MarkAsViewed(ctx, "alice", n.ID))

	summary, err := svc.GetUnviewedCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalUnviewed)

	// viewed flag is monotonic, re-mark is a no-op
	require.NoError(t, svc.MarkAsViewed(ctx, "alice", n.ID))

	err = svc.MarkAsViewed(ctx, "alice", 99999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMarkAllAsViewed(t *testing.T) {
	db := setupDB(t)
	pub := &fakePublisher{}
	svc := newNotificationService(t, db, pub)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seedNotification(t, db, "alice")
	}
	seedNotification(t, db, "bob")

	require.NoError(t, svc.MarkAllAsViewed(ctx, "alice"))

	aliceSummary, err := svc.GetUnviewedCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), aliceSummary.TotalUnviewed)

	// other members untouched
	bobSummary, err := svc.GetUnviewedCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), bobSummary.TotalUnviewed)
}

func TestDeleteNotification(t *testing.T) {
	db := setupDB(t)
	pub := &fakePublisher{}
	svc := newNotificationService(t, db, pub)
	ctx := context.Background()

	n := seedNotification(t, db, "alice")

	err := svc.Delete(ctx, "bob", n.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, "alice", n.ID))

	items, total, err := svc.GetList("alice", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(0), total)
}

func TestNotifyUpcomingEventFanOut(t *testing.T) {
	db := setupDB(t)
	pub := &fakePublisher{}
	svc := newNotificationService(t, db, pub)
	ctx := context.Background()

	event := &domain.ScheduledEvent{
		ID:        7,
		GroupID:   3,
		Title:     "Sprint review",
		StartTime: time.Now().Add(24 * time.Hour),
	}
	members := []string{"alice", "bob", "carol"}

	require.NoError(t, svc.NotifyUpcomingEvent(ctx, event, members))

	for _, m := range members {
		pushes := pub.published(ws.UserChannel(m), EventNewNotification)
		require.Len(t, pushes, 1, "member %s", m)
		item, ok := pushes[0].Payload.(domain.NotificationItem)
		require.True(t, ok)
		assert.Equal(t, domain.NotificationTypeUpcomingEvent, item.Type)
		assert.Equal(t, domain.NotificationPriorityHigh, item.Priority)
		require.NotNil(t, item.EventID)
		assert.Equal(t, event.ID, *item.EventID)
		assert.Equal(t, "/groups/3/events/7", item.Link)

		summary, err := svc.GetUnviewedCount(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.TotalUnviewed)
	}
}

func TestHasRecentForEvent(t *testing.T) {
	db := setupDB(t)
	pub := &fakePublisher{}
	svc := newNotificationService(t, db, pub)
	ctx := context.Background()

	event := &domain.ScheduledEvent{ID: 1, GroupID: 1, Title: "Kickoff", StartTime: time.Now().Add(time.Hour)}

	found, err := svc.HasRecentForEvent(event.ID, 12*time.Hour)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.NotifyUpcomingEvent(ctx, event, []string{"alice"}))

	found, err = svc.HasRecentForEvent(event.ID, 12*time.Hour)
	require.NoError(t, err)
	assert.True(t, found)

	// a different event is not shadowed
	found, err = svc.HasRecentForEvent(2, 12*time.Hour)
	require.NoError(t, err)
	assert.False(t, found)
}
