package jobs

import (
	"context"
	"log/slog"
	"time"
)

type staleJobExpirer interface {
	ExpireStale(ctx context.Context, maxAge time.Duration) (int, error)
}

// JobExpiry cancels open jobs nobody has taken within maxAge.
type JobExpiry struct {
	jobs   staleJobExpirer
	maxAge time.Duration
	logger *slog.Logger
}

func (j *JobExpiry) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := j.jobs.ExpireStale(ctx, j.maxAge)
	if err != nil {
		j.logger.Error("job expiry failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info("expired stale jobs", "count", n)
	}
}
