package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baulytics/baupreis/internal/clock"
	collectordomain "github.com/baulytics/baupreis/internal/collector/domain"
	indexdomain "github.com/baulytics/baupreis/internal/index/domain"
	orgdomain "github.com/baulytics/baupreis/internal/organization/domain"
	"github.com/baulytics/baupreis/internal/ratelimit"
	"go.uber.org/zap"
)

// heldLocker reports every lease as taken by another holder.
type heldLocker struct {
	acquires int
}

func (l *heldLocker) Acquire(ctx context.Context, job string, ttl time.Duration) (*ratelimit.Lease, bool, error) {
	l.acquires++
	return nil, false, nil
}

type stubCollector struct {
	calls int
	err   error
}

func (s *stubCollector) Collect(ctx context.Context) (*collectordomain.RunResult, error) {
	s.calls++
	return &collectordomain.RunResult{}, s.err
}

type stubIndex struct {
	calls int
	err   error
}

func (s *stubIndex) Calculate(ctx context.Context, date time.Time) (*indexdomain.IndexRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &indexdomain.IndexRecord{Date: date}, nil
}

type stubOrg struct {
	calls int
	err   error
}

func (s *stubOrg) DowngradeExpiredTrials(ctx context.Context) (*orgdomain.DowngradeResult, error) {
	s.calls++
	return &orgdomain.DowngradeResult{}, s.err
}

func newTestScheduler(t *testing.T, collector *stubCollector, index *stubIndex, org *stubOrg) *Scheduler {
	t.Helper()
	s, err := New(Params{
		Log:          zap.NewNop(),
		Clock:        clock.NewFakeClock(time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)),
		CollectorSvc: collector,
		IndexSvc:     index,
		OrgSvc:       org,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s
}

func TestRunOnceRunsAllJobs(t *testing.T) {
	collector := &stubCollector{}
	index := &stubIndex{}
	org := &stubOrg{}
	s := newTestScheduler(t, collector, index, org)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if collector.calls != 1 || index.calls != 1 || org.calls != 1 {
		t.Fatalf("expected each job to run once, got %d/%d/%d",
			collector.calls, index.calls, org.calls)
	}
}

func TestRunOnceEmptyHistoryIsNotAFailure(t *testing.T) {
	s := newTestScheduler(t, &stubCollector{}, &stubIndex{err: indexdomain.ErrNoData}, &stubOrg{})

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("an empty price history must not fail the run: %v", err)
	}
}

func TestRunOnceCollectsJobErrors(t *testing.T) {
	collector := &stubCollector{err: errors.New("catalog down")}
	index := &stubIndex{}
	org := &stubOrg{}
	s := newTestScheduler(t, collector, index, org)

	err := s.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected aggregated job error")
	}
	// A failing job never blocks the jobs after it.
	if index.calls != 1 || org.calls != 1 {
		t.Fatalf("later jobs must still run, got index=%d org=%d", index.calls, org.calls)
	}
}

func TestCollectNowSkipsWhenLockHeld(t *testing.T) {
	collector := &stubCollector{}
	locker := &heldLocker{}
	s, err := New(Params{
		Log:          zap.NewNop(),
		Clock:        clock.NewFakeClock(time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)),
		Locker:       locker,
		CollectorSvc: collector,
		IndexSvc:     &stubIndex{},
		OrgSvc:       &stubOrg{},
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	result, ran, err := s.CollectNow(context.Background())
	if err != nil {
		t.Fatalf("a held lock is not an error: %v", err)
	}
	if ran {
		t.Fatal("expected the run to be skipped while the lock is held")
	}
	if result != nil {
		t.Fatalf("a skipped run has no result, got %+v", result)
	}
	if collector.calls != 0 {
		t.Fatalf("the job body must not start, got %d calls", collector.calls)
	}
	if locker.acquires != 1 {
		t.Fatalf("expected one acquire attempt, got %d", locker.acquires)
	}
}

func TestRunOnceSkipsAllJobsWhenLocksHeld(t *testing.T) {
	collector := &stubCollector{}
	index := &stubIndex{}
	org := &stubOrg{}
	s, err := New(Params{
		Log:          zap.NewNop(),
		Clock:        clock.NewFakeClock(time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)),
		Locker:       &heldLocker{},
		CollectorSvc: collector,
		IndexSvc:     index,
		OrgSvc:       org,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("skipped runs must not surface as failures: %v", err)
	}
	if collector.calls != 0 || index.calls != 0 || org.calls != 0 {
		t.Fatalf("no job body may run, got %d/%d/%d", collector.calls, index.calls, org.calls)
	}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
