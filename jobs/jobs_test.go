package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/anjiri1684/teacheron/configs"
	"github.com/anjiri1684/teacheron/services"
)

type fakeExpirer struct {
	maxAge time.Duration
	calls  int
	err    error
}

func (f *fakeExpirer) ExpireStale(_ context.Context, maxAge time.Duration) (int, error) {
	f.calls++
	f.maxAge = maxAge
	return 2, f.err
}

type fakeMarker struct {
	timeout time.Duration
	calls   int
}

func (f *fakeMarker) MarkIdleOffline(_ context.Context, timeout time.Duration) (int64, error) {
	f.calls++
	f.timeout = timeout
	return 1, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJobExpiryRun(t *testing.T) {
	exp := &fakeExpirer{}
	job := &JobExpiry{jobs: exp, maxAge: 30 * 24 * time.Hour, logger: discard()}
	job.Run()
	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, 30*24*time.Hour, exp.maxAge)

	exp.err = errors.New("db down")
	job.Run()
	assert.Equal(t, 2, exp.calls)
}

func TestPresenceSweepRun(t *testing.T) {
	m := &fakeMarker{}
	sweep := &PresenceSweep{users: m, timeout: 5 * time.Minute, logger: discard()}
	sweep.Run()
	assert.Equal(t, 1, m.calls)
	assert.Equal(t, 5*time.Minute, m.timeout)
}

func TestNewScheduler(t *testing.T) {
	cfg := &config.Config{JobExpiryDays: 30, PresenceTimeout: 5 * time.Minute}
	c, err := NewScheduler(cfg, &services.Services{}, discard())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
}

func TestNewSchedulerSkipsDisabledJobs(t *testing.T) {
	cfg := &config.Config{JobExpiryDays: 0, PresenceTimeout: 5 * time.Minute}
	c, err := NewScheduler(cfg, &services.Services{}, discard())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	cfg = &config.Config{JobExpiryDays: -1}
	c, err = NewScheduler(cfg, &services.Services{}, discard())
	require.NoError(t, err)
	assert.Empty(t, c.Entries())
}
