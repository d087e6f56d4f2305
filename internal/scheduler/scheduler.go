package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/songhq/songwork/internal/archive"
	"github.com/songhq/songwork/internal/backup"
)

// fireOffset keeps the wake instant clear of the exact-midnight clock edge.
const fireOffset = 5 * time.Second

// Archiver stores the daily summary for a date
type Archiver interface {
	Save(ctx context.Context, date time.Time, origin archive.Origin) (*archive.Record, error)
}

// SnapshotSaver writes a full-dataset snapshot
type SnapshotSaver interface {
	SaveNow(ctx context.Context) (backup.SaveResult, error)
}

// Scheduler fires once per calendar day shortly after UTC midnight: it
// archives the day that just ended and writes a fresh snapshot. Both actions
// are best-effort — a failure is logged and the loop keeps running.
//
// The wake instant is recomputed from a fresh wall-clock read every cycle,
// so the loop self-corrects after clock jumps or process suspension.
type Scheduler struct {
	archiver  Archiver
	snapshots SnapshotSaver
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a new Scheduler.
func New(archiver Archiver, snapshots SnapshotSaver, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		archiver:  archiver,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled. Cancellation is a clean exit, not an
// error: the wait phase returns promptly and an in-flight fire phase is
// abandoned without logging it as a failure.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		now := s.now().UTC()
		timer := time.NewTimer(nextFire(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.fire(ctx)
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	// The day that just ended.
	yesterday := s.now().UTC().AddDate(0, 0, -1)

	if _, err := s.archiver.Save(ctx, yesterday, archive.OriginAuto); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("auto archive failed",
			"date", yesterday.Format("2006-01-02"), "error", err)
	}

	if _, err := s.snapshots.SaveNow(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("scheduled snapshot failed", "error", err)
	}
}

// nextFire returns the next UTC midnight plus the fire offset. Always the
// coming midnight, never today's — even if called within the offset window.
func nextFire(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, 1).Add(fireOffset)
}
