package repository

import (
	"time"

	"github.com/studyhub/studyhub-backend/internal/domain"
	"gorm.io/gorm"
)

// EventRepository scheduled-event access interface
type EventRepository interface {
	ListActiveStartingIn(from, to time.Time) ([]domain.ScheduledEvent, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// ListActiveStartingIn returns non-cancelled, non-deleted events whose
// start time falls in [from, to)
func (r *eventRepository) ListActiveStartingIn(from, to time.Time) ([]domain.ScheduledEvent, error) {
	var events []domain.ScheduledEvent
	err := r.db.
		Where("canceled = ? AND start_time >= ? AND start_time < ?", false, from, to).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}
