package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/studyhub-backend/internal/domain"
)

type fakeEventSource struct {
	events []domain.ScheduledEvent
	err    error
	from   time.Time
	to     time.Time
}

func (f *fakeEventSource) ListActiveStartingIn(from, to time.Time) ([]domain.ScheduledEvent, error) {
	f.from, f.to = from, to
	return f.events, f.err
}

type fakeMemberSource struct {
	members map[int64][]string
	err     error
}

func (f *fakeMemberSource) ListApprovedMemberIDs(groupID int64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members[groupID], nil
}

// fakeSink records fan-outs and treats any previously sent event as
// recent, mimicking the dedup query
type fakeSink struct {
	sent      map[int64][]string
	sendErr   map[int64]error
	recentErr error
}

func newFakeSink() *fakeSink {
	return &fakeSink{sent: make(map[int64][]string), sendErr: make(map[int64]error)}
}

func (f *fakeSink) HasRecentForEvent(eventID int64, window time.Duration) (bool, error) {
	if f.recentErr != nil {
		return false, f.recentErr
	}
	_, ok := f.sent[eventID]
	return ok, nil
}

func (f *fakeSink) NotifyUpcomingEvent(ctx context.Context, event *domain.ScheduledEvent, memberIDs []string) error {
	if err := f.sendErr[event.ID]; err != nil {
		return err
	}
	f.sent[event.ID] = memberIDs
	return nil
}

func newTestReminder(events *fakeEventSource, members *fakeMemberSource, sink *fakeSink) *Reminder {
	return NewReminder(events, members, sink, Config{})
}

func TestTickFansOutToApprovedMembers(t *testing.T) {
	events := &fakeEventSource{events: []domain.ScheduledEvent{
		{ID: 1, GroupID: 10, Title: "Standup"},
	}}
	members := &fakeMemberSource{members: map[int64][]string{10: {"alice", "bob"}}}
	sink := newFakeSink()

	r := newTestReminder(events, members, sink)
	require.NoError(t, r.Tick(context.Background()))

	assert.Equal(t, []string{"alice", "bob"}, sink.sent[1])
}

func TestTickSkipsRecentlyNotified(t *testing.T) {
	events := &fakeEventSource{events: []domain.ScheduledEvent{
		{ID: 1, GroupID: 10, Title: "Standup"},
	}}
	members := &fakeMemberSource{members: map[int64][]string{10: {"alice"}}}
	sink := newFakeSink()

	r := newTestReminder(events, members, sink)
	require.NoError(t, r.Tick(context.Background()))
	require.Len(t, sink.sent[1], 1)

	// second tick within the dedup window sends nothing more
	require.NoError(t, r.Tick(context.Background()))
	assert.Equal(t, []string{"alice"}, sink.sent[1])
}

func TestTickExcludesMember(t *testing.T) {
	organizer := "alice"
	events := &fakeEventSource{events: []domain.ScheduledEvent{
		{ID: 1, GroupID: 10, Title: "Standup", ExcludeMemberID: &organizer},
	}}
	members := &fakeMemberSource{members: map[int64][]string{10: {"alice", "bob", "carol"}}}
	sink := newFakeSink()

	r := newTestReminder(events, members, sink)
	require.NoError(t, r.Tick(context.Background()))

	assert.Equal(t, []string{"bob", "carol"}, sink.sent[1])
}

func TestTickSkipsEmptyGroup(t *testing.T) {
	organizer := "alice"
	events := &fakeEventSource{events: []domain.ScheduledEvent{
		{ID: 1, GroupID: 10, Title: "Solo", ExcludeMemberID: &organizer},
	}}
	members := &fakeMemberSource{members: map[int64][]string{10: {"alice"}}}
	sink := newFakeSink()

	r := newTestReminder(events, members, sink)
	require.NoError(t, r.Tick(context.Background()))

	_, sent := sink.sent[1]
	assert.False(t, sent)
}

func TestTickIsolatesPerEventErrors(t *testing.T) {
	events := &fakeEventSource{events: []domain.ScheduledEvent{
		{ID: 1, GroupID: 10, Title: "Broken"},
		{ID: 2, GroupID: 10, Title: "Fine"},
	}}
	members := &fakeMemberSource{members: map[int64][]string{10: {"alice"}}}
	sink := newFakeSink()
	sink.sendErr[1] = errors.New("store down")

	r := newTestReminder(events, members, sink)
	require.NoError(t, r.Tick(context.Background()))

	_, sentBroken := sink.sent[1]
	assert.False(t, sentBroken)
	assert.Equal(t, []string{"alice"}, sink.sent[2])
}

func TestTickReturnsWindowFetchError(t *testing.T) {
	events := &fakeEventSource{err: errors.New("db gone")}
	r := newTestReminder(events, &fakeMemberSource{}, newFakeSink())
	assert.Error(t, r.Tick(context.Background()))
}

func TestTickScansTomorrowWindow(t *testing.T) {
	events := &fakeEventSource{}
	r := newTestReminder(events, &fakeMemberSource{}, newFakeSink())
	r.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}

	require.NoError(t, r.Tick(context.Background()))

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), events.from)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), events.to)
}

func TestTomorrowWindowMonthRollover(t *testing.T) {
	now := time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)
	from, to := tomorrowWindow(now)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), to)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	events := &fakeEventSource{}
	r := NewReminder(events, &fakeMemberSource{}, newFakeSink(), Config{TickInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
