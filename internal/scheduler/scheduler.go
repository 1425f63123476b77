// Package scheduler wires up the cron job that periodically reclaims expired
// result-cache entries. Reads already treat expired entries as absent; the
// sweep only bounds memory between evictions.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// purger is the cache surface the sweep needs.
type purger interface {
	PurgeCache() int
}

// Scheduler wraps robfig/cron and manages the purge loop.
type Scheduler struct {
	cron   *cron.Cron
	target purger
	logger *zap.Logger
	spec   string // cron spec, e.g. "@every 5m"
}

// New creates a Scheduler that purges every intervalMinutes minutes.
func New(target purger, logger *zap.Logger, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		target: target,
		logger: logger,
		spec:   fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the purge job and starts the scheduler.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.runPurge)
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("cache purge scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("cache purge scheduler stopped")
}

func (s *Scheduler) runPurge() {
	purged := s.target.PurgeCache()
	if purged > 0 {
		s.logger.Info("purged expired cache entries", zap.Int("purged", purged))
	}
}
