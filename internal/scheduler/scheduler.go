// Package scheduler runs the three core jobs on their independent cadences.
// The jobs never call each other: index calculation only reads what
// collection wrote, and the downgrade job is unrelated to both.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	collectordomain "github.com/baulytics/baupreis/internal/collector/domain"
	"github.com/baulytics/baupreis/internal/clock"
	indexdomain "github.com/baulytics/baupreis/internal/index/domain"
	obsmetrics "github.com/baulytics/baupreis/internal/observability/metrics"
	orgdomain "github.com/baulytics/baupreis/internal/organization/domain"
	"github.com/baulytics/baupreis/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobCollect   = "collect_prices"
	JobIndex     = "calculate_index"
	JobDowngrade = "downgrade_trials"
)

// JobLocker hands out per-job leases so overlapping runs of the same job are
// skipped. A nil JobLocker, like a nil *ratelimit.Locker, grants every lease.
type JobLocker interface {
	Acquire(ctx context.Context, job string, ttl time.Duration) (*ratelimit.Lease, bool, error)
}

type Params struct {
	fx.In

	Log          *zap.Logger
	Clock        clock.Clock
	Locker       JobLocker `optional:"true"`
	CollectorSvc collectordomain.Service
	IndexSvc     indexdomain.Service
	OrgSvc       orgdomain.Service
	Config       Config `optional:"true"`
}

type Scheduler struct {
	log          *zap.Logger
	cfg          Config
	clock        clock.Clock
	locker       JobLocker
	collectorSvc collectordomain.Service
	indexSvc     indexdomain.Service
	orgSvc       orgdomain.Service
}

var ErrInvalidConfig = errors.New("scheduler: missing dependencies")

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.CollectorSvc == nil || p.IndexSvc == nil || p.OrgSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:          p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:          p.Config.withDefaults(),
		clock:        p.Clock,
		locker:       p.Locker,
		collectorSvc: p.CollectorSvc,
		indexSvc:     p.IndexSvc,
		orgSvc:       p.OrgSvc,
	}, nil
}

// RunJob wraps one job execution with the shared lock, a per-job timeout and
// metrics. It returns (false, nil) when another run still holds the lock.
func (s *Scheduler) RunJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) (bool, error) {
	jobMetrics := obsmetrics.Jobs()

	var lease *ratelimit.Lease
	acquired := true
	if s.locker != nil {
		var lockErr error
		lease, acquired, lockErr = s.locker.Acquire(parent, name, timeout+time.Minute)
		if lockErr != nil {
			s.log.Warn("job lock unavailable, proceeding without it",
				zap.String("job", name),
				zap.Error(lockErr),
			)
			acquired = true
		}
	}
	if !acquired {
		jobMetrics.IncJobSkipped(name)
		s.log.Info("job skipped, previous run still holds the lock", zap.String("job", name))
		return false, nil
	}
	defer func() {
		_ = lease.Release(parent)
	}()

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := s.clock.Now()
	jobMetrics.IncJobRun(name)
	s.log.Info("job started", zap.String("job", name))

	err := fn(ctx)
	jobMetrics.ObserveJobDuration(name, time.Since(start))
	if err != nil {
		jobMetrics.IncJobError(name)
		s.log.Error("job failed",
			zap.String("job", name),
			zap.Error(err),
		)
		return true, err
	}

	s.log.Info("job finished",
		zap.String("job", name),
		zap.Duration("duration", time.Since(start)),
	)
	return true, nil
}

// RunOnce executes all three jobs sequentially, used by the headless runner
// at startup and in tests.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var errs []error

	if _, err := s.RunJob(ctx, JobCollect, s.cfg.CollectTimeout, s.collect); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.RunJob(ctx, JobIndex, s.cfg.IndexTimeout, s.calculateIndex); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.RunJob(ctx, JobDowngrade, s.cfg.DowngradeTimeout, s.downgradeTrials); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// RunForever ticks each job on its own cadence until ctx is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	var wg sync.WaitGroup

	loops := []struct {
		name     string
		interval time.Duration
		timeout  time.Duration
		fn       func(ctx context.Context) error
	}{
		{JobCollect, s.cfg.CollectInterval, s.cfg.CollectTimeout, s.collect},
		{JobIndex, s.cfg.IndexInterval, s.cfg.IndexTimeout, s.calculateIndex},
		{JobDowngrade, s.cfg.DowngradeInterval, s.cfg.DowngradeTimeout, s.downgradeTrials},
	}

	for _, loop := range loops {
		wg.Add(1)
		go func(name string, interval, timeout time.Duration, fn func(ctx context.Context) error) {
			defer wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					_, _ = s.RunJob(ctx, name, timeout, fn)
				}
			}
		}(loop.name, loop.interval, loop.timeout, loop.fn)
	}

	wg.Wait()
}

// CollectNow runs the collection job under the job lock, for HTTP triggers.
// ran is false when another run already holds the lock.
func (s *Scheduler) CollectNow(ctx context.Context) (result *collectordomain.RunResult, ran bool, err error) {
	ran, err = s.RunJob(ctx, JobCollect, s.cfg.CollectTimeout, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = s.collectorSvc.Collect(ctx)
		return fnErr
	})
	return result, ran, err
}

// CalculateIndexNow computes the index for an explicit date under the job
// lock. Unlike the scheduled run it surfaces ErrNoData to the caller.
func (s *Scheduler) CalculateIndexNow(ctx context.Context, date time.Time) (record *indexdomain.IndexRecord, ran bool, err error) {
	ran, err = s.RunJob(ctx, JobIndex, s.cfg.IndexTimeout, func(ctx context.Context) error {
		var fnErr error
		record, fnErr = s.indexSvc.Calculate(ctx, date)
		return fnErr
	})
	return record, ran, err
}

// DowngradeTrialsNow runs the downgrade job under the job lock.
func (s *Scheduler) DowngradeTrialsNow(ctx context.Context) (result *orgdomain.DowngradeResult, ran bool, err error) {
	ran, err = s.RunJob(ctx, JobDowngrade, s.cfg.DowngradeTimeout, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = s.orgSvc.DowngradeExpiredTrials(ctx)
		return fnErr
	})
	return result, ran, err
}

func (s *Scheduler) collect(ctx context.Context) error {
	_, err := s.collectorSvc.Collect(ctx)
	return err
}

func (s *Scheduler) calculateIndex(ctx context.Context) error {
	_, err := s.indexSvc.Calculate(ctx, s.clock.Now())
	if errors.Is(err, indexdomain.ErrNoData) {
		// Nothing collected yet; not a scheduler failure.
		s.log.Warn("index calculation skipped, no price data")
		return nil
	}
	return err
}

func (s *Scheduler) downgradeTrials(ctx context.Context) error {
	_, err := s.orgSvc.DowngradeExpiredTrials(ctx)
	return err
}
