package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhanpermana/react-event-reminder/internal/notify"
	"github.com/farhanpermana/react-event-reminder/models"
)

type fakeStore struct {
	broadcasts []models.Broadcast
}

func (f *fakeStore) ListActive() ([]models.Broadcast, error) {
	out := make([]models.Broadcast, 0, len(f.broadcasts))
	for _, b := range f.broadcasts {
		if b.Active() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByID(id uint) (*models.Broadcast, error) {
	for i := range f.broadcasts {
		if f.broadcasts[i].ID == id {
			b := f.broadcasts[i]
			return &b, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrBroadcastNotFound, id)
}

type fakeRefs struct {
	starts map[string]time.Time
}

func (f *fakeRefs) StartTime(refType models.ReferenceType, code string) (time.Time, error) {
	if start, ok := f.starts[string(refType)+"/"+code]; ok {
		return start, nil
	}
	return time.Time{}, fmt.Errorf("reference %s %s not found", refType, code)
}

type fakeDispatcher struct {
	mu    sync.Mutex
	fired []uint
}

func (f *fakeDispatcher) Dispatch(b *models.Broadcast) (*notify.DispatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired = append(f.fired, b.ID)
	return &notify.DispatchResult{BroadcastID: b.ID}, nil
}

func (f *fakeDispatcher) firedIDs() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.fired...)
}

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return loc
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func refPtr(r models.ReferenceType) *models.ReferenceType { return &r }

func dailyBroadcast(id uint, code, targetTime string) models.Broadcast {
	b := models.Broadcast{
		Code:         code,
		Content:      "content of " + code,
		Type:         models.BroadcastTelegram,
		ScheduleType: models.ScheduleEveryDay,
		TargetTime:   targetTime,
		IsActive:     boolPtr(true),
	}
	b.ID = id
	return b
}

func newTestScheduler(t *testing.T, store *fakeStore, refs *fakeRefs) (*Scheduler, *fakeDispatcher) {
	t.Helper()
	if refs == nil {
		refs = &fakeRefs{}
	}
	d := &fakeDispatcher{}
	s := New(store, refs, d, nil, testLocation(t))
	t.Cleanup(s.Stop)
	return s, d
}

// nextInvocation waits for the cron runner to compute the job's next fire time.
func nextInvocation(t *testing.T, s *Scheduler, jobID string) time.Time {
	t.Helper()
	var next time.Time
	require.Eventually(t, func() bool {
		for _, js := range s.Status().ActiveJobs {
			if js.ID == jobID && js.NextInvocation != nil {
				next = *js.NextInvocation
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "job %s never got a next invocation", jobID)
	return next
}

// safeClockTime returns an HH:mm at least two hours away from now so tests
// never race the minute boundary.
func safeClockTime(loc *time.Location) string {
	hour := (time.Now().In(loc).Hour() + 2) % 24
	return fmt.Sprintf("%d:15", hour)
}

func TestInitSchedulesDailyBroadcast(t *testing.T) {
	loc := testLocation(t)
	store := &fakeStore{broadcasts: []models.Broadcast{
		dailyBroadcast(1, "WELCOME", "8:00"),
	}}
	s, _ := newTestScheduler(t, store, nil)
	require.NoError(t, s.Init())

	st := s.Status()
	require.Equal(t, 1, st.TotalJobs)
	require.Equal(t, "WELCOME-telegram-1", st.ActiveJobs[0].ID)

	next := nextInvocation(t, s, "WELCOME-telegram-1")
	local := next.In(loc)
	assert.Equal(t, 8, local.Hour())
	assert.Equal(t, 0, local.Minute())
	assert.True(t, next.After(time.Now()))
	assert.LessOrEqual(t, time.Until(next), 24*time.Hour)
}

func TestInitIsIdempotent(t *testing.T) {
	loc := testLocation(t)
	target := safeClockTime(loc)
	store := &fakeStore{broadcasts: []models.Broadcast{
		dailyBroadcast(1, "ALPHA", target),
		dailyBroadcast(2, "BETA", target),
	}}
	s, _ := newTestScheduler(t, store, nil)

	require.NoError(t, s.Init())
	firstAlpha := nextInvocation(t, s, "ALPHA-telegram-1")
	firstBeta := nextInvocation(t, s, "BETA-telegram-2")
	firstIDs := jobIDs(s)

	require.NoError(t, s.Init())
	secondAlpha := nextInvocation(t, s, "ALPHA-telegram-1")
	secondBeta := nextInvocation(t, s, "BETA-telegram-2")

	assert.Equal(t, firstIDs, jobIDs(s))
	assert.True(t, firstAlpha.Equal(secondAlpha))
	assert.True(t, firstBeta.Equal(secondBeta))
	assert.Equal(t, 2, s.Status().TotalJobs)
}

func jobIDs(s *Scheduler) []string {
	st := s.Status()
	ids := make([]string, 0, len(st.ActiveJobs))
	for _, js := range st.ActiveJobs {
		ids = append(ids, js.ID)
	}
	return ids
}

func TestSingleDigitHourEqualsPaddedHour(t *testing.T) {
	store := &fakeStore{broadcasts: []models.Broadcast{
		dailyBroadcast(1, "SHORT", "9:05"),
		dailyBroadcast(2, "PADDED", "09:05"),
	}}
	s, _ := newTestScheduler(t, store, nil)
	require.NoError(t, s.Init())

	short := nextInvocation(t, s, "SHORT-telegram-1")
	padded := nextInvocation(t, s, "PADDED-telegram-2")
	assert.True(t, short.Equal(padded), "9:05 and 09:05 must produce the same trigger")
}

func TestWorkingDayNextFallsOnWeekday(t *testing.T) {
	loc := testLocation(t)
	store := &fakeStore{broadcasts: func() []models.Broadcast {
		b := dailyBroadcast(1, "STANDUP", safeClockTime(loc))
		b.ScheduleType = models.ScheduleWorkingDay
		return []models.Broadcast{b}
	}()}
	s, _ := newTestScheduler(t, store, nil)
	require.NoError(t, s.Init())

	next := nextInvocation(t, s, "STANDUP-telegram-1")
	weekday := next.In(loc).Weekday()
	assert.NotEqual(t, time.Saturday, weekday)
	assert.NotEqual(t, time.Sunday, weekday)
}

func TestMalformedTargetTimeIsSkipped(t *testing.T) {
	store := &fakeStore{broadcasts: []models.Broadcast{
		dailyBroadcast(1, "BADCLOCK", "8am"),
		dailyBroadcast(2, "BADHOUR", "25:00"),
		dailyBroadcast(3, "GOOD", "10:30"),
	}}
	s, _ := newTestScheduler(t, store, nil)
	require.NoError(t, s.Init())

	// One broken broadcast never blocks the others.
	assert.Equal(t, []string{"GOOD-telegram-3"}, jobIDs(s))
}

func TestUnrecognizedScheduleTypeIsSkipped(t *testing.T) {
	b := dailyBroadcast(1, "WEIRD", "10:00")
	b.ScheduleType = "every_week"
	store := &fakeStore{broadcasts: []models.Broadcast{b}}
	s, _ := newTestScheduler(t, store, nil)
	require.NoError(t, s.Init())

	assert.Zero(t, s.Status().TotalJobs)
}

func onGoingBroadcast(id uint, code string, refType models.ReferenceType, refCode, targetTime string) models.Broadcast {
	b := models.Broadcast{
		Code:          code,
		Content:       "content of " + code,
		Type:          models.BroadcastTelegram,
		ScheduleType:  models.ScheduleOnGoing,
		TargetTime:    targetTime,
		ReferenceType: refPtr(refType),
		ReferenceCode: strPtr(refCode),
		IsActive:      boolPtr(true),
	}
	b.ID = id
	return b
}

func TestOnGoingSchedulesOneShotBeforeReference(t *testing.T) {
	start := time.Now().Add(72 * time.Hour)
	refs := &fakeRefs{starts: map[string]time.Time{"course/CS101": start}}
	store := &fakeStore{broadcasts: []models.Broadcast{
		onGoingBroadcast(1, "CS101-REMIND", models.ReferenceCourse, "CS101", "2d"),
	}}
	s, _ := newTestScheduler(t, store, refs)
	require.NoError(t, s.Init())

	next := nextInvocation(t, s, "CS101-REMIND-telegram-1-reference")
	assert.WithinDuration(t, start.Add(-48*time.Hour), next, time.Second)
}

func TestOnGoingInThePastIsSkipped(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)
	refs := &fakeRefs{starts: map[string]time.Time{"course/CS101": start}}
	store := &fakeStore{broadcasts: []models.Broadcast{
		// 2 days before a start only 1 day away is already in the past.
		onGoingBroadcast(1, "LATE", models.ReferenceCourse, "CS101", "2d"),
	}}
	s, _ := newTestScheduler(t, store, refs)
	require.NoError(t, s.Init())

	assert.Zero(t, s.Status().TotalJobs)
}

func TestOnGoingMissingReferenceIsSkipped(t *testing.T) {
	store := &fakeStore{broadcasts: []models.Broadcast{
		onGoingBroadcast(1, "GHOST", models.ReferenceCourse, "NOPE", "1d"),
		func() models.Broadcast {
			b := onGoingBroadcast(2, "NOREF", models.ReferenceCourse, "", "1d")
			b.ReferenceCode = nil
			return b
		}(),
	}}
	s, _ := newTestScheduler(t, store, nil)
	require.NoError(t, s.Init())

	assert.Zero(t, s.Status().TotalJobs)
}

func TestOnGoingInvalidOffsetIsSkipped(t *testing.T) {
	refs := &fakeRefs{starts: map[string]time.Time{"course/CS101": time.Now().Add(96 * time.Hour)}}
	store := &fakeStore{broadcasts: []models.Broadcast{
		onGoingBroadcast(1, "BADOFFSET", models.ReferenceCourse, "CS101", "2w"),
	}}
	s, _ := newTestScheduler(t, store, refs)
	require.NoError(t, s.Init())

	assert.Zero(t, s.Status().TotalJobs)
}

func TestOneShotFires(t *testing.T) {
	start := time.Now().Add(time.Hour + 150*time.Millisecond)
	refs := &fakeRefs{starts: map[string]time.Time{"course/SOON": start}}
	store := &fakeStore{broadcasts: []models.Broadcast{
		onGoingBroadcast(7, "SOON", models.ReferenceCourse, "SOON", "1h"),
	}}
	s, d := newTestScheduler(t, store, refs)
	require.NoError(t, s.Init())

	require.Eventually(t, func() bool {
		return len(d.firedIDs()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []uint{7}, d.firedIDs())

	// A fired one-shot no longer reports a next invocation.
	st := s.Status()
	require.Equal(t, 1, st.TotalJobs)
	assert.Nil(t, st.ActiveJobs[0].NextInvocation)
}

func TestExecuteManual(t *testing.T) {
	active := dailyBroadcast(1, "ACTIVE", "10:00")
	inactive := dailyBroadcast(2, "INACTIVE", "10:00")
	inactive.IsActive = boolPtr(false)
	store := &fakeStore{broadcasts: []models.Broadcast{active, inactive}}
	s, d := newTestScheduler(t, store, nil)

	result, err := s.ExecuteManual(1)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []uint{1}, d.firedIDs())

	_, err = s.ExecuteManual(2)
	assert.ErrorIs(t, err, ErrBroadcastNotActive)
	assert.Equal(t, []uint{1}, d.firedIDs(), "no dispatch may happen for an inactive broadcast")

	_, err = s.ExecuteManual(99)
	assert.ErrorIs(t, err, ErrBroadcastNotFound)
}

func TestNextReminderTime(t *testing.T) {
	start := time.Now().Add(72 * time.Hour)
	refs := &fakeRefs{starts: map[string]time.Time{"course/CS101": start}}
	daily := dailyBroadcast(1, "DAILY", "10:00")
	reference := onGoingBroadcast(2, "REF", models.ReferenceCourse, "CS101", "1d")
	jobless := dailyBroadcast(3, "BROKEN", "not-a-time")
	store := &fakeStore{broadcasts: []models.Broadcast{daily, reference, jobless}}
	s, _ := newTestScheduler(t, store, refs)
	require.NoError(t, s.Init())

	nextInvocation(t, s, "DAILY-telegram-1")
	got, err := s.NextReminderTime(1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint(1), got.BroadcastID)
	require.NotNil(t, got.NextInvocation)

	// Falls back to the reference-based job when no primary job exists.
	got, err = s.NextReminderTime(2)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.NextInvocation)
	assert.WithinDuration(t, start.Add(-24*time.Hour), *got.NextInvocation, time.Second)

	got, err = s.NextReminderTime(3)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.NextReminderTime(42)
	assert.ErrorIs(t, err, ErrBroadcastNotFound)
}

type fakeSyncer struct {
	mu     sync.Mutex
	called int
}

func (f *fakeSyncer) SyncToDatabase() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called++
	return 0, nil
}

func TestInitRegistersSheetSyncJob(t *testing.T) {
	store := &fakeStore{}
	d := &fakeDispatcher{}
	s := New(store, &fakeRefs{}, d, &fakeSyncer{}, testLocation(t))
	t.Cleanup(s.Stop)
	require.NoError(t, s.Init())

	st := s.Status()
	require.Equal(t, 1, st.TotalJobs)
	assert.Equal(t, "google-sheet-sync", st.ActiveJobs[0].ID)
}
