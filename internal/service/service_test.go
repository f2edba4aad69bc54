package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/studyhub/studyhub-backend/internal/domain"
	"github.com/studyhub/studyhub-backend/internal/migration"
)

// fakePublisher records every publish for assertions
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Channel string
	Event   string
	Payload interface{}
}

func (p *fakePublisher) Publish(channel, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Channel: channel, Event: event, Payload: payload})
}

func (p *fakePublisher) published(channel, event string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Channel == channel && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := migration.Run(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func seedMembers(t *testing.T, db *gorm.DB, userIDs ...string) {
	t.Helper()
	for _, id := range userIDs {
		require.NoError(t, db.Create(&domain.Member{UserID: id, Nickname: id}).Error)
	}
}

func seedGroupWithMembers(t *testing.T, db *gorm.DB, groupID int64, ownerID string, approved []string, pending []string) {
	t.Helper()
	require.NoError(t, db.Create(&domain.StudyGroup{ID: groupID, Name: "group", OwnerID: ownerID}).Error)
	for _, id := range approved {
		require.NoError(t, db.Create(&domain.GroupMember{
			GroupID: groupID, MemberID: id,
			Status: domain.MembershipStatusApproved, Role: domain.GroupRoleMember,
			JoinedAt: time.Now(),
		}).Error)
	}
	for _, id := range pending {
		require.NoError(t, db.Create(&domain.GroupMember{
			GroupID: groupID, MemberID: id,
			Status: domain.MembershipStatusPending, Role: domain.GroupRoleMember,
			JoinedAt: time.Now(),
		}).Error)
	}
}
