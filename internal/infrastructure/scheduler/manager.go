// Package scheduler drives the background workers using gocron v2.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"sdbridge/internal/shared/logger"
)

// SyncProcessor is one background worker pass: the watcher, a scoped
// reconciliation engine, or the cleanup sweeper.
type SyncProcessor interface {
	Sync(ctx context.Context) error
}

// ReauthRunner refreshes saved credentials in one pass.
type ReauthRunner interface {
	RunOnce(ctx context.Context, notifyTransient bool) error
}

// Manager owns the single gocron scheduler instance behind every periodic
// job. Jobs run in singleton mode so a slow pass never overlaps itself.
type Manager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewManager(log logger.Interface) (*Manager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.Local),
	)
	if err != nil {
		return nil, err
	}

	return &Manager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterSyncJob registers one periodic worker pass under the given name.
// The first run happens immediately on Start.
func (m *Manager) RegisterSyncJob(name string, processor SyncProcessor, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("job %q: interval must be positive", name)
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.runSync(ctx, name, processor)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered sync job", "job", name, "interval", interval)
	return nil
}

func (m *Manager) runSync(ctx context.Context, name string, processor SyncProcessor) {
	m.logger.Debugw("sync pass started", "job", name)

	start := time.Now()
	if err := processor.Sync(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("sync pass failed",
			"job", name,
			"error", err,
			"duration", time.Since(start),
		)
		return
	}

	m.logger.Debugw("sync pass finished", "job", name, "duration", time.Since(start))
}

// RegisterReauthJob schedules the daily credential refresh at the given
// wall-clock time ("HH:MM", scheduler's local time).
func (m *Manager) RegisterReauthJob(runner ReauthRunner, at string) error {
	hour, minute, err := ParseClock(at)
	if err != nil {
		return fmt.Errorf("reauth time: %w", err)
	}

	_, err = m.scheduler.NewJob(
		gocron.CronJob(fmt.Sprintf("%d %d * * *", minute, hour), false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.runReauth(ctx, runner)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("credential-reauth"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered credential refresh job", "at", at)
	return nil
}

func (m *Manager) runReauth(ctx context.Context, runner ReauthRunner) {
	m.logger.Infow("scheduled credential refresh started")

	start := time.Now()
	if err := runner.RunOnce(ctx, false); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("scheduled credential refresh failed",
			"error", err,
			"duration", time.Since(start),
		)
		return
	}

	m.logger.Infow("scheduled credential refresh finished", "duration", time.Since(start))
}

// Start starts the scheduler and all registered jobs.
func (m *Manager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started", "job_count", len(m.scheduler.Jobs()))
}

// Stop shuts the scheduler down and waits for running jobs to finish.
func (m *Manager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	err := m.scheduler.Shutdown()
	m.started = false
	if err != nil {
		m.logger.Errorw("scheduler shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *Manager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// ParseClock parses a wall-clock time of day in "HH:MM" form.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q, want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
