package modules

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/vantagecrm/vantage-go/pkg/observability"
)

// DefaultRefreshSchedule re-fetches the licensed module list every 15
// minutes, so a module revoked server-side disappears from long-lived
// processes without a restart.
const DefaultRefreshSchedule = "*/15 * * * *"

// RefreshScheduler periodically re-fetches the enabled-module list. Each run
// replaces the list wholesale, so the scheduler is also how license
// revocations propagate to daemons that never re-login.
type RefreshScheduler struct {
	store  *Store
	cron   *cron.Cron
	logger *observability.Logger
}

// NewRefreshScheduler registers the refresh job on the given cron schedule
// (standard five-field syntax). The scheduler is created stopped.
func NewRefreshScheduler(store *Store, schedule string, logger *observability.Logger) (*RefreshScheduler, error) {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	s := &RefreshScheduler{
		store:  store,
		cron:   cron.New(),
		logger: logger,
	}
	_, err := s.cron.AddFunc(schedule, func() {
		if err := store.FetchEnabled(context.Background()); err != nil {
			logger.WithError(err).Warn("scheduled module refresh failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("modules: invalid refresh schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running the refresh job in the background.
func (s *RefreshScheduler) Start() {
	s.cron.Start()
	s.logger.Debug("module refresh scheduler started")
}

// Stop halts the scheduler and waits for any in-flight refresh to finish.
func (s *RefreshScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Debug("module refresh scheduler stopped")
}
