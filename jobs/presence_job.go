package jobs

import (
	"context"
	"log/slog"
	"time"
)

type idleMarker interface {
	MarkIdleOffline(ctx context.Context, timeout time.Duration) (int64, error)
}

// PresenceSweep clears the online flag of users who stopped signalling.
type PresenceSweep struct {
	users   idleMarker
	timeout time.Duration
	logger  *slog.Logger
}

func (p *PresenceSweep) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := p.users.MarkIdleOffline(ctx, p.timeout)
	if err != nil {
		p.logger.Error("presence sweep failed", "error", err)
		return
	}
	if n > 0 {
		p.logger.Info("marked idle users offline", "count", n)
	}
}
