package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/studyhub-backend/internal/domain"
)

func TestListActiveStartingIn(t *testing.T) {
	db := setupDB(t)
	repo := NewEventRepository(db)

	now := time.Now()
	from := now.Add(24 * time.Hour)
	to := now.Add(48 * time.Hour)

	events := []domain.ScheduledEvent{
		{GroupID: 1, Title: "in window", StartTime: from.Add(2 * time.Hour)},
		{GroupID: 1, Title: "boundary start", StartTime: from},
		{GroupID: 1, Title: "too early", StartTime: from.Add(-time.Hour)},
		{GroupID: 1, Title: "boundary end", StartTime: to},
		{GroupID: 2, Title: "cancelled", StartTime: from.Add(3 * time.Hour), Canceled: true},
	}
	for i := range events {
		require.NoError(t, db.Create(&events[i]).Error)
	}

	found, err := repo.ListActiveStartingIn(from, to)
	require.NoError(t, err)
	require.Len(t, found, 2)

	// Ascending start order, half-open window, cancelled excluded
	assert.Equal(t, "boundary start", found[0].Title)
	assert.Equal(t, "in window", found[1].Title)
}
