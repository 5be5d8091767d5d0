package jobs

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	config "github.com/anjiri1684/teacheron/configs"
	"github.com/anjiri1684/teacheron/services"
)

const (
	expirySpec   = "@hourly"
	presenceSpec = "@every 1m"
)

// NewScheduler wires the periodic maintenance jobs. The caller starts and
// stops the returned cron.
func NewScheduler(cfg *config.Config, svc *services.Services, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()

	if maxAge := cfg.JobExpiryDuration(); maxAge > 0 {
		expiry := &JobExpiry{jobs: svc.Jobs, maxAge: maxAge, logger: logger}
		if _, err := c.AddFunc(expirySpec, expiry.Run); err != nil {
			return nil, fmt.Errorf("schedule job expiry: %w", err)
		}
	} else {
		logger.Warn("job expiry disabled", "job_expiry_days", cfg.JobExpiryDays)
	}

	if cfg.PresenceTimeout > 0 {
		presence := &PresenceSweep{users: svc.Users, timeout: cfg.PresenceTimeout, logger: logger}
		if _, err := c.AddFunc(presenceSpec, presence.Run); err != nil {
			return nil, fmt.Errorf("schedule presence sweep: %w", err)
		}
	} else {
		logger.Warn("presence sweep disabled", "presence_timeout", cfg.PresenceTimeout)
	}

	logger.Info("cron jobs scheduled", "entries", len(c.Entries()))
	return c, nil
}
