// internal/scheduler/scheduler.go

// Package scheduler owns the in-memory timer registry. The registry is a
// disposable cache derived from the broadcasts table: Init rebuilds it from
// scratch and a process restart loses nothing that cannot be re-derived.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/farhanpermana/react-event-reminder/internal/notify"
	"github.com/farhanpermana/react-event-reminder/internal/schedule"
	"github.com/farhanpermana/react-event-reminder/models"
)

var (
	ErrBroadcastNotFound  = errors.New("broadcast not found")
	ErrBroadcastNotActive = errors.New("broadcast is not active")
)

// clockRe accepts "H:mm" and "HH:mm"; single-digit hours are padded.
var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

const sheetSyncJobID = "google-sheet-sync"

// BroadcastStore is the read surface the scheduler needs over broadcasts.
type BroadcastStore interface {
	ListActive() ([]models.Broadcast, error)
	// FindByID returns an error wrapping ErrBroadcastNotFound when absent.
	FindByID(id uint) (*models.Broadcast, error)
}

// ReferenceResolver turns a reference code into the referenced entity's start
// instant.
type ReferenceResolver interface {
	StartTime(refType models.ReferenceType, code string) (time.Time, error)
}

// Dispatcher fires one broadcast.
type Dispatcher interface {
	Dispatch(b *models.Broadcast) (*notify.DispatchResult, error)
}

// Syncer pulls the external spreadsheet into the broadcasts table.
type Syncer interface {
	SyncToDatabase() (int, error)
}

// jobHandle is one registered timer: cancellable, with next-fire introspection.
type jobHandle interface {
	Cancel()
	// Next returns the zero time when no further firing is computable.
	Next() time.Time
}

type cronJob struct {
	c  *cron.Cron
	id cron.EntryID
}

func (j *cronJob) Cancel()         { j.c.Remove(j.id) }
func (j *cronJob) Next() time.Time { return j.c.Entry(j.id).Next }

type oneShotJob struct {
	timer  *time.Timer
	fireAt time.Time

	mu    sync.Mutex
	fired bool
}

func (j *oneShotJob) Cancel() {
	if j.timer != nil {
		j.timer.Stop()
	}
}

func (j *oneShotJob) Next() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fired {
		return time.Time{}
	}
	return j.fireAt
}

func (j *oneShotJob) markFired() {
	j.mu.Lock()
	j.fired = true
	j.mu.Unlock()
}

// JobStatus is one registry entry as exposed by Status.
type JobStatus struct {
	ID             string     `json:"id"`
	NextInvocation *time.Time `json:"nextInvocation"`
}

type Status struct {
	TotalJobs  int         `json:"totalJobs"`
	ActiveJobs []JobStatus `json:"activeJobs"`
}

// NextReminder is the next fire instant of one broadcast's job.
type NextReminder struct {
	BroadcastID    uint       `json:"broadcastId"`
	NextInvocation *time.Time `json:"nextInvocation"`
}

// Scheduler converts active broadcasts into timers and fires the dispatcher.
type Scheduler struct {
	store      BroadcastStore
	refs       ReferenceResolver
	dispatcher Dispatcher
	syncer     Syncer // nil disables the daily sheet sync job
	loc        *time.Location

	mu   sync.Mutex
	cron *cron.Cron
	jobs map[string]jobHandle
}

func New(store BroadcastStore, refs ReferenceResolver, dispatcher Dispatcher, syncer Syncer, loc *time.Location) *Scheduler {
	s := &Scheduler{
		store:      store,
		refs:       refs,
		dispatcher: dispatcher,
		syncer:     syncer,
		loc:        loc,
		jobs:       make(map[string]jobHandle),
		cron:       cron.New(cron.WithLocation(loc)),
	}
	s.cron.Start()
	return s
}

// Init cancels every registered timer and rebuilds the registry from the
// active broadcasts. One broadcast's bad schedule never aborts the others.
func (s *Scheduler) Init() error {
	slog.Info("initializing scheduler")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAllLocked()

	broadcasts, err := s.store.ListActive()
	if err != nil {
		return fmt.Errorf("load active broadcasts: %w", err)
	}
	for i := range broadcasts {
		s.scheduleBroadcastLocked(&broadcasts[i])
	}
	slog.Info("scheduler initialized", "jobs", len(s.jobs))

	s.scheduleSheetSyncLocked()
	return nil
}

// Stop halts the cron runner and cancels every outstanding timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAllLocked()
	s.cron.Stop()
}

func (s *Scheduler) cancelAllLocked() {
	for id, job := range s.jobs {
		if job == nil {
			slog.Warn("skipping cancellation of empty job handle", "job", id)
			continue
		}
		job.Cancel()
		slog.Info("cancelled scheduled job", "job", id)
	}
	s.jobs = make(map[string]jobHandle)
}

func (s *Scheduler) scheduleBroadcastLocked(b *models.Broadcast) {
	jobID := fmt.Sprintf("%s-%s-%d", b.Code, b.Type, b.ID)

	switch b.ScheduleType {
	case models.ScheduleEveryDay:
		s.scheduleCronLocked(b, jobID, "*")
	case models.ScheduleWorkingDay:
		s.scheduleCronLocked(b, jobID, "1-5")
	case models.ScheduleOnGoing:
		s.scheduleReferenceLocked(b)
	default:
		slog.Warn("unrecognized schedule type, skipping broadcast", "broadcast", b.ID, "scheduleType", b.ScheduleType)
	}
}

func (s *Scheduler) scheduleCronLocked(b *models.Broadcast, jobID, dayOfWeek string) {
	m := clockRe.FindStringSubmatch(b.TargetTime)
	if m == nil {
		slog.Error("invalid time format for broadcast, expected H:mm or HH:mm",
			"broadcast", b.ID, "code", b.Code, "targetTime", b.TargetTime)
		return
	}

	hour, minute := m[1], m[2]
	if len(hour) == 1 {
		slog.Warn("auto-padding single-digit hour", "broadcast", b.ID, "code", b.Code, "hour", hour)
		hour = "0" + hour
	}

	spec := fmt.Sprintf("%s %s * * %s", minute, hour, dayOfWeek)
	broadcast := *b // snapshot captured at schedule time
	id, err := s.cron.AddFunc(spec, func() {
		s.fire(&broadcast)
	})
	if err != nil {
		slog.Error("could not schedule cron job", "job", jobID, "spec", spec, "error", err)
		return
	}

	s.jobs[jobID] = &cronJob{c: s.cron, id: id}
	slog.Info("scheduled cron job", "job", jobID, "spec", spec)
}

func (s *Scheduler) scheduleReferenceLocked(b *models.Broadcast) {
	if b.ReferenceType == nil || b.ReferenceCode == nil || *b.ReferenceCode == "" {
		slog.Warn("cannot schedule reference-based job: missing reference information", "broadcast", b.ID)
		return
	}

	start, err := s.refs.StartTime(*b.ReferenceType, *b.ReferenceCode)
	if err != nil {
		slog.Warn("reference entity not found for broadcast",
			"broadcast", b.ID, "referenceType", *b.ReferenceType, "referenceCode", *b.ReferenceCode, "error", err)
		return
	}

	fireAt, err := schedule.ResolveOffset(start, b.TargetTime, s.loc)
	if err != nil {
		slog.Warn("invalid targetTime for reference-based broadcast", "broadcast", b.ID, "targetTime", b.TargetTime)
		return
	}

	// No retroactive catch-up for missed reference-based reminders.
	if !fireAt.After(time.Now()) {
		slog.Warn("reminder time is already in the past, skipping", "broadcast", b.ID, "fireAt", fireAt)
		return
	}

	jobID := fmt.Sprintf("%s-%s-%d-reference", b.Code, b.Type, b.ID)
	broadcast := *b
	job := &oneShotJob{fireAt: fireAt}
	job.timer = time.AfterFunc(time.Until(fireAt), func() {
		job.markFired()
		s.fire(&broadcast)
	})

	s.jobs[jobID] = job
	slog.Info("scheduled reference-based job", "job", jobID, "fireAt", fireAt)
}

// scheduleSheetSyncLocked registers the fixed midnight job that pulls the
// spreadsheet and rebuilds the whole registry. This is the only recurring
// path by which external sheet edits reach live timers.
func (s *Scheduler) scheduleSheetSyncLocked() {
	if s.syncer == nil {
		return
	}

	id, err := s.cron.AddFunc("0 0 * * *", func() {
		synced, err := s.syncer.SyncToDatabase()
		if err != nil {
			slog.Error("daily sheet sync failed", "error", err)
			return
		}
		slog.Info("completed daily sheet sync", "synced", synced)

		if err := s.Init(); err != nil {
			slog.Error("scheduler reinitialization after sheet sync failed", "error", err)
		}
	})
	if err != nil {
		slog.Error("could not schedule daily sheet sync", "error", err)
		return
	}

	s.jobs[sheetSyncJobID] = &cronJob{c: s.cron, id: id}
	slog.Info("scheduled daily sheet sync at midnight")
}

func (s *Scheduler) fire(b *models.Broadcast) {
	if _, err := s.dispatcher.Dispatch(b); err != nil {
		slog.Error("error executing reminder", "broadcast", b.ID, "code", b.Code, "error", err)
	}
}

// ExecuteManual bypasses the registry and dispatches one broadcast now, but
// only when it is active.
func (s *Scheduler) ExecuteManual(id uint) (*notify.DispatchResult, error) {
	b, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !b.Active() {
		return nil, fmt.Errorf("%w: id %d", ErrBroadcastNotActive, id)
	}
	return s.dispatcher.Dispatch(b)
}

// Status reports every registered job with its next fire instant.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		TotalJobs:  len(s.jobs),
		ActiveJobs: make([]JobStatus, 0, len(s.jobs)),
	}
	for id, job := range s.jobs {
		js := JobStatus{ID: id}
		if next := job.Next(); !next.IsZero() {
			t := next
			js.NextInvocation = &t
		}
		st.ActiveJobs = append(st.ActiveJobs, js)
	}
	sort.Slice(st.ActiveJobs, func(i, j int) bool { return st.ActiveJobs[i].ID < st.ActiveJobs[j].ID })
	return st
}

// NextReminderTime returns the next fire instant of the broadcast's primary
// job, falling back to its reference-based job. A nil result means no job is
// registered for it.
func (s *Scheduler) NextReminderTime(id uint) (*NextReminder, error) {
	b, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobID := fmt.Sprintf("%s-%s-%d", b.Code, b.Type, b.ID)
	job, ok := s.jobs[jobID]
	if !ok {
		job, ok = s.jobs[jobID+"-reference"]
	}
	if !ok {
		return nil, nil
	}

	out := &NextReminder{BroadcastID: b.ID}
	if next := job.Next(); !next.IsZero() {
		t := next
		out.NextInvocation = &t
	}
	return out, nil
}
