package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper is satisfied by pending.MemoryStore.
type Sweeper interface {
	Sweep(now time.Time) int
}

// StatsRefresher is satisfied by service.ActivationService.
type StatsRefresher interface {
	RefreshStats(ctx context.Context) error
}

type HousekeepingScheduler struct {
	cronEngine       *cron.Cron
	sweeper          Sweeper // nil when pending requests live in Redis
	refresher        StatsRefresher
	logger           *logrus.Logger
	pendingSweepSpec string
	statsRefreshSpec string
}

func NewHousekeepingScheduler(
	sweeper Sweeper,
	refresher StatsRefresher,
	logger *logrus.Logger,
	pendingSweepSpec string, // e.g. "*/1 * * * *"
	statsRefreshSpec string, // e.g. "0 * * * *"
) *HousekeepingScheduler {
	return &HousekeepingScheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)),
		sweeper:          sweeper,
		refresher:        refresher,
		logger:           logger,
		pendingSweepSpec: pendingSweepSpec,
		statsRefreshSpec: statsRefreshSpec,
	}
}

// Start registers the jobs and starts the cron engine. An invalid spec is
// returned as an error and nothing is started.
func (s *HousekeepingScheduler) Start() error {
	if s.sweeper != nil {
		if _, err := s.cronEngine.AddFunc(s.pendingSweepSpec, s.sweepPending); err != nil {
			return fmt.Errorf("could not add pending sweep job: %w", err)
		}
	}

	if _, err := s.cronEngine.AddFunc(s.statsRefreshSpec, s.refreshStats); err != nil {
		return fmt.Errorf("could not add stats refresh job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.Infof("Housekeeping scheduler started with %d jobs", len(s.cronEngine.Entries()))
	return nil
}

func (s *HousekeepingScheduler) sweepPending() {
	if n := s.sweeper.Sweep(time.Now()); n > 0 {
		s.logger.Infof("🧹 Removed %d expired activation requests", n)
	}
}

func (s *HousekeepingScheduler) refreshStats() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.refresher.RefreshStats(ctx); err != nil {
		s.logger.WithError(err).Error("Stats refresh failed")
		return
	}
	s.logger.Debug("Population stats cache invalidated")
}

func (s *HousekeepingScheduler) Stop() {
	s.logger.Info("Stopping housekeeping scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Housekeeping scheduler stopped.")
}
