// Package scheduler runs the upcoming-event reminder loop. Exactly one
// instance must run per deployment: the only duplicate-send protection
// is the trailing dedup window in the notification store, so a second
// scheduler outside that window would double-send.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyhub/studyhub-backend/internal/domain"
	"github.com/studyhub/studyhub-backend/pkg/logger"
)

// Default timing, overridable via Config
const (
	defaultTickInterval = time.Hour
	defaultDedupWindow  = 12 * time.Hour
	defaultErrorBackoff = 5 * time.Minute
)

// EventSource lists scheduled events starting in a window
type EventSource interface {
	ListActiveStartingIn(from, to time.Time) ([]domain.ScheduledEvent, error)
}

// MemberSource lists the approved members of a group
type MemberSource interface {
	ListApprovedMemberIDs(groupID int64) ([]string, error)
}

// NotificationSink creates upcoming-event notifications and answers the
// dedup check
type NotificationSink interface {
	HasRecentForEvent(eventID int64, window time.Duration) (bool, error)
	NotifyUpcomingEvent(ctx context.Context, event *domain.ScheduledEvent, memberIDs []string) error
}

// Config tunes the reminder loop
type Config struct {
	TickInterval time.Duration
	DedupWindow  time.Duration
	ErrorBackoff time.Duration
}

// Reminder scans tomorrow's scheduled events once per tick and fans out
// one notification per approved group member. There is no persisted
// checkpoint: restart correctness comes entirely from the dedup window.
type Reminder struct {
	events        EventSource
	members       MemberSource
	notifications NotificationSink
	cfg           Config
	log           zerolog.Logger
	now           func() time.Time
}

// NewReminder creates a reminder scheduler
func NewReminder(events EventSource, members MemberSource, notifications NotificationSink, cfg Config) *Reminder {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = defaultDedupWindow
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = defaultErrorBackoff
	}
	return &Reminder{
		events:        events,
		members:       members,
		notifications: notifications,
		cfg:           cfg,
		log:           logger.WithComponent("reminder"),
		now:           time.Now,
	}
}

// Run loops scan → sleep until ctx is cancelled. The sleep aborts
// immediately on shutdown; a failed scan retries after the shorter
// error backoff instead of a full interval.
func (r *Reminder) Run(ctx context.Context) {
	r.log.Info().
		Dur("tick_interval", r.cfg.TickInterval).
		Dur("dedup_window", r.cfg.DedupWindow).
		Msg("reminder scheduler started")

	for {
		sleep := r.cfg.TickInterval
		if err := r.Tick(ctx); err != nil {
			r.log.Error().Err(err).Msg("scan failed, backing off")
			sleep = r.cfg.ErrorBackoff
		}

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			r.log.Info().Msg("reminder scheduler stopped")
			return
		}
	}
}

// Tick performs one scan over tomorrow's events. An error while
// processing one event is logged and never aborts the rest of the tick;
// only a failure of the window fetch itself is returned.
func (r *Reminder) Tick(ctx context.Context) error {
	from, to := tomorrowWindow(r.now())

	events, err := r.events.ListActiveStartingIn(from, to)
	if err != nil {
		return err
	}

	for i := range events {
		event := &events[i]
		if err := r.processEvent(ctx, event); err != nil {
			r.log.Error().Err(err).
				Int64("event_id", event.ID).
				Int64("group_id", event.GroupID).
				Msg("event fan-out failed")
		}
	}
	return nil
}

func (r *Reminder) processEvent(ctx context.Context, event *domain.ScheduledEvent) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Int64("event_id", event.ID).Msg("panic in event fan-out")
		}
	}()

	recent, err := r.notifications.HasRecentForEvent(event.ID, r.cfg.DedupWindow)
	if err != nil {
		return err
	}
	if recent {
		r.log.Debug().Int64("event_id", event.ID).Msg("already notified, skipping")
		return nil
	}

	memberIDs, err := r.members.ListApprovedMemberIDs(event.GroupID)
	if err != nil {
		return err
	}
	if event.ExcludeMemberID != nil {
		memberIDs = without(memberIDs, *event.ExcludeMemberID)
	}
	if len(memberIDs) == 0 {
		return nil
	}

	if err := r.notifications.NotifyUpcomingEvent(ctx, event, memberIDs); err != nil {
		return err
	}

	r.log.Info().
		Int64("event_id", event.ID).
		Int64("group_id", event.GroupID).
		Int("members", len(memberIDs)).
		Msg("upcoming-event reminders sent")
	return nil
}

// tomorrowWindow returns [startOfTomorrow, endOfTomorrow) in now's
// location. time.Date normalizes the day arithmetic across DST.
func tomorrowWindow(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	end := time.Date(y, m, d+2, 0, 0, 0, 0, now.Location())
	return start, end
}

func without(ids []string, exclude string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}
