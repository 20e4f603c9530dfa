// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DraftSweeper removes editor drafts that expired before now.
type DraftSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DraftCleanupJob sweeps expired editor drafts. The TTL index on
// page_drafts does the same, but its monitor only runs about once a minute
// and may lag further under load.
func DraftCleanupJob(drafts DraftSweeper, interval time.Duration, logger *zap.Logger) Job {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return Job{
		Name:     "draft-cleanup",
		Interval: interval,
		Timeout:  time.Minute,
		Run: func(ctx context.Context) error {
			n, err := drafts.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("cleaned up expired drafts", zap.Int64("deleted", n))
			}
			return nil
		},
	}
}
