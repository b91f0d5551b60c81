package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// NotificationPurger is the slice of the notification store the sweep needs.
type NotificationPurger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionScheduler runs the periodic notification cleanup. The engine
// itself stays pull-based; this job is just an external caller on a timer,
// like any page load.
type RetentionScheduler struct {
	cronEngine    *cron.Cron
	purger        NotificationPurger
	logger        *logrus.Logger
	cronSpec      string
	retentionDays int
}

func NewRetentionScheduler(purger NotificationPurger, logger *logrus.Logger, cronSpec string, retentionDays int) *RetentionScheduler {
	return &RetentionScheduler{
		cronEngine:    cron.New(cron.WithLocation(time.Local)),
		purger:        purger,
		logger:        logger,
		cronSpec:      cronSpec,
		retentionDays: retentionDays,
	}
}

func (s *RetentionScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, s.runSweep)
	if err != nil {
		return err
	}
	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"spec":           s.cronSpec,
		"retention_days": s.retentionDays,
	}).Info("retention scheduler started")
	return nil
}

func (s *RetentionScheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	removed, err := s.purger.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("notification retention sweep failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"removed": removed,
		"cutoff":  cutoff.Format("2006-01-02"),
	}).Info("notification retention sweep finished")
}

// Stop halts the cron engine and waits for a running sweep to finish.
func (s *RetentionScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("retention scheduler stopped")
}
