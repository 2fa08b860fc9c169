package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"
)

// Default sync cadence in minutes. A long-running process has no browser
// visibility-change events to piggyback on, so a periodic pull stands in
// for them.
const DefaultSyncIntervalMinutes = 5

// Syncer is the part of the sync engine the scheduler drives.
type Syncer interface {
	SyncNow(ctx context.Context) error
}

// Scheduler runs the periodic background sync for the application.
type Scheduler struct {
	scheduler *gocron.Scheduler
	syncer    Syncer
}

// New creates a new scheduler instance
func New(syncer Syncer) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		syncer:    syncer,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	interval := DefaultSyncIntervalMinutes
	if raw := os.Getenv("SYNC_INTERVAL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			interval = minutes
		}
	}

	s.scheduler.Every(interval).Minutes().Do(s.runSync)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// runSync performs one pull-and-push round trip. Failures are logged and
// retried on the next tick; the engine keeps its dirty set either way.
func (s *Scheduler) runSync() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.syncer.SyncNow(ctx); err != nil {
		log.Printf("Background sync failed: %v", err)
	}
}

// RunManualCheck forces one immediate sync round trip, for the indicator's
// retry action.
func (s *Scheduler) RunManualCheck(ctx context.Context) error {
	return s.syncer.SyncNow(ctx)
}
