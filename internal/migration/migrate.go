package migration

import (
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-backend/internal/domain"
)

// Run auto-migrates the messaging and notification schema
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Member{},
		&domain.StudyGroup{},
		&domain.GroupMember{},
		&domain.ScheduledEvent{},
		&domain.DirectMessage{},
		&domain.GroupMessage{},
		&domain.Notification{},
	)
}
