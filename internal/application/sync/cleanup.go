package sync

import (
	"context"
	"fmt"
	"time"

	"sdbridge/internal/domain/session"
	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/shared/config"
	"sdbridge/internal/shared/logger"
)

// KVStore keeps the sweeper's once-per-day run marker.
type KVStore interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
}

const cleanupMarkerKey = "cleanup:last_run_day"

// CleanupService retires expired dialog sessions and old archived records.
// Session TTL cleanup runs on every tick; the retention sweep over the
// archived table is gated to one configured weekday and hour window and runs
// at most once per calendar day.
type CleanupService struct {
	cache      ticket.Cache
	sessions   session.Repository
	kv         KVStore
	compactor  Compactor
	cfg        config.CleanupConfig
	sessionTTL time.Duration

	now func() time.Time

	log logger.Interface
}

func NewCleanupService(
	cache ticket.Cache,
	sessions session.Repository,
	kv KVStore,
	compactor Compactor,
	cfg config.CleanupConfig,
	sessionTTL time.Duration,
	log logger.Interface,
) *CleanupService {
	return &CleanupService{
		cache:      cache,
		sessions:   sessions,
		kv:         kv,
		compactor:  compactor,
		cfg:        cfg,
		sessionTTL: sessionTTL,
		now:        time.Now,
		log:        log,
	}
}

// Sync expires stale sessions, then checks the schedule gates and runs the
// retention sweep when they all pass.
func (s *CleanupService) Sync(ctx context.Context) error {
	now := s.now()

	expired, err := s.sessions.DeleteExpired(ctx, s.sessionTTL)
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	if expired > 0 {
		s.log.Infow("expired sessions removed", "count", expired)
	}

	// Config counts weekdays from Monday; time.Weekday counts from Sunday.
	weekday := (int(now.Weekday()) + 6) % 7
	if weekday != s.cfg.Weekday {
		return nil
	}
	if !inHourWindow(now.Hour(), s.cfg.HourStart, s.cfg.HourEnd) {
		return nil
	}

	day := now.Format("2006-01-02")
	lastRun, ok, err := s.kv.Get(ctx, cleanupMarkerKey)
	if err != nil {
		return fmt.Errorf("read cleanup marker: %w", err)
	}
	if ok && lastRun == day {
		return nil
	}

	if err := s.sweep(ctx, now); err != nil {
		return err
	}

	if err := s.kv.Set(ctx, cleanupMarkerKey, day); err != nil {
		return fmt.Errorf("write cleanup marker: %w", err)
	}
	return nil
}

func (s *CleanupService) sweep(ctx context.Context, now time.Time) error {
	cutoff := now.AddDate(0, 0, -s.cfg.RetentionDays)
	removed, err := s.cache.DeleteArchivedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete old archived records: %w", err)
	}

	s.log.Infow("retention sweep finished",
		"archived_removed", removed,
		"cutoff", cutoff.Format(time.RFC3339),
	)

	if s.cfg.Vacuum && s.compactor != nil {
		if err := s.compactor.Compact(ctx); err != nil {
			// Compaction is opportunistic; the deletes already happened.
			s.log.Warnw("database compaction failed", "error", err)
		}
	}
	return nil
}

// inHourWindow reports whether hour falls in [start, end], both ends
// inclusive, so 1..5 covers 01:00 through 05:59 and start == end names a
// single hour. A window with start > end wraps past midnight.
func inHourWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}
