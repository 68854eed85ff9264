// Package sweeper reconciles records stuck in a non-terminal state. A
// dispatch the summarizer accepted but never finished would otherwise
// leave a record pending forever.
package sweeper

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/metrics"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

// Defaults for the reconciliation sweep.
const (
	defaultSchedule = "@every 5m"
	defaultMaxAge   = 30 * time.Minute
	sweepTimeout    = 30 * time.Second
)

// Config holds sweeper settings.
type Config struct {
	Enabled  bool          `yaml:"enabled" env:"SWEEPER_ENABLED"`
	Schedule string        `yaml:"schedule" env:"SWEEPER_SCHEDULE"`
	MaxAge   time.Duration `yaml:"max_age" env:"SWEEPER_MAX_AGE"`
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaultMaxAge
	}
}

// Store is the persistence surface the sweeper needs.
type Store interface {
	MarkStaleFailed(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Sweeper periodically fails stale non-terminal records.
type Sweeper struct {
	cfg     Config
	store   Store
	logger  logger.Logger
	metrics *metrics.Metrics
	cron    *cron.Cron
}

// New creates a Sweeper.
func New(cfg Config, store Store, log logger.Logger, m *metrics.Metrics) *Sweeper {
	cfg.SetDefaults()
	return &Sweeper{
		cfg:     cfg,
		store:   store,
		logger:  log,
		metrics: m,
		cron:    cron.New(),
	}
}

// Start schedules the sweep. A disabled sweeper starts nothing.
func (s *Sweeper) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("reconciliation sweeper disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("reconciliation sweeper started",
		logger.String("schedule", s.cfg.Schedule),
		logger.Duration("max_age", s.cfg.MaxAge))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	swept, err := s.store.MarkStaleFailed(ctx, s.cfg.MaxAge)
	if err != nil {
		s.logger.Error("reconciliation sweep failed", logger.Error(err))
		return
	}
	if swept > 0 {
		s.metrics.SweptTotal.Add(float64(swept))
		s.logger.Warn("stale links marked failed",
			logger.Int64("count", swept),
			logger.Duration("max_age", s.cfg.MaxAge))
	}
}

// SweepNow runs a single sweep immediately, outside the schedule.
func (s *Sweeper) SweepNow() {
	s.sweep()
}
