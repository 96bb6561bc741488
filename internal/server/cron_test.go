package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baulytics/baupreis/internal/clock"
	collectordomain "github.com/baulytics/baupreis/internal/collector/domain"
	indexdomain "github.com/baulytics/baupreis/internal/index/domain"
	orgdomain "github.com/baulytics/baupreis/internal/organization/domain"
	"github.com/baulytics/baupreis/internal/ratelimit"
	"github.com/baulytics/baupreis/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// cronTestNow is the frozen wall clock every cron handler test runs at.
var cronTestNow = time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

type stubCollectorSvc struct {
	result *collectordomain.RunResult
	err    error
	calls  int
}

func (s *stubCollectorSvc) Collect(ctx context.Context) (*collectordomain.RunResult, error) {
	s.calls++
	return s.result, s.err
}

type stubIndexSvc struct {
	record *indexdomain.IndexRecord
	err    error
	got    time.Time
}

func (s *stubIndexSvc) Calculate(ctx context.Context, date time.Time) (*indexdomain.IndexRecord, error) {
	s.got = date
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

// stubHeldLocker reports every job lease as taken by another holder.
type stubHeldLocker struct{}

func (stubHeldLocker) Acquire(ctx context.Context, job string, ttl time.Duration) (*ratelimit.Lease, bool, error) {
	return nil, false, nil
}

type stubOrgSvc struct {
	result *orgdomain.DowngradeResult
	err    error
}

func (s *stubOrgSvc) DowngradeExpiredTrials(ctx context.Context) (*orgdomain.DowngradeResult, error) {
	return s.result, s.err
}

func newCronTestServer(t *testing.T, collector collectordomain.Service, index indexdomain.Service, org orgdomain.Service, locker scheduler.JobLocker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if collector == nil {
		collector = &stubCollectorSvc{result: &collectordomain.RunResult{}}
	}
	if index == nil {
		index = &stubIndexSvc{record: &indexdomain.IndexRecord{}}
	}
	if org == nil {
		org = &stubOrgSvc{result: &orgdomain.DowngradeResult{}}
	}

	fakeClock := clock.NewFakeClock(cronTestNow)
	sched, err := scheduler.New(scheduler.Params{
		Log:          zap.NewNop(),
		Clock:        fakeClock,
		Locker:       locker,
		CollectorSvc: collector,
		IndexSvc:     index,
		OrgSvc:       org,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	s := &Server{
		engine:    engine,
		log:       zap.NewNop(),
		clock:     fakeClock,
		scheduler: sched,
	}
	engine.POST("/api/cron/collect-prices", s.TriggerCollect)
	engine.POST("/api/cron/calculate-index", s.TriggerCalculateIndex)
	engine.POST("/api/cron/downgrade-trials", s.TriggerDowngradeTrials)
	return engine
}

func TestTriggerCollectPartialFailureStillOK(t *testing.T) {
	collector := &stubCollectorSvc{result: &collectordomain.RunResult{
		Collected: 14,
		Skipped:   2,
		Sources:   map[string]int{"synthetic": 10, "lme": 4},
		Errors:    []string{"destatis: timeout"},
	}}
	engine := newCronTestServer(t, collector, nil, nil, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cron/collect-prices", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("partial failure must report 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
	if body["collected"] != float64(14) || body["skipped"] != float64(2) {
		t.Fatalf("unexpected counters: %v", body)
	}
	if _, present := body["errors"]; !present {
		t.Fatal("recorded source errors must surface in the response")
	}
}

func TestTriggerCollectRunFatal(t *testing.T) {
	collector := &stubCollectorSvc{
		result: &collectordomain.RunResult{Errors: []string{"catalog: connection refused"}},
		err:    collectordomain.ErrCatalogUnavailable,
	}
	engine := newCronTestServer(t, collector, nil, nil, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cron/collect-prices", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("run-fatal failure must report 500, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != false {
		t.Fatalf("expected ok=false, got %v", body["ok"])
	}
}

func TestTriggerCalculateIndexDateHandling(t *testing.T) {
	pct := decimal.RequireFromString("2.15")
	index := &stubIndexSvc{record: &indexdomain.IndexRecord{
		Date:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		IndexValue:   decimal.RequireFromString("544.44"),
		ChangePct30D: &pct,
	}}
	engine := newCronTestServer(t, nil, index, nil, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cron/calculate-index?date=2026-03-10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cron/calculate-index?date=10.03.2026", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed date must report 400, got %d", rec.Code)
	}
}

func TestTriggerCollectLockHeld(t *testing.T) {
	collector := &stubCollectorSvc{result: &collectordomain.RunResult{}}
	engine := newCronTestServer(t, collector, nil, nil, stubHeldLocker{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cron/collect-prices", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("a held job lock must report 409, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != false {
		t.Fatalf("expected ok=false, got %v", body["ok"])
	}
	if body["error"] != "job_already_running" {
		t.Fatalf("expected job_already_running, got %v", body["error"])
	}
	if collector.calls != 0 {
		t.Fatalf("a skipped run must not start the job body, got %d calls", collector.calls)
	}
}

func TestTriggerCalculateIndexDefaultDate(t *testing.T) {
	index := &stubIndexSvc{record: &indexdomain.IndexRecord{
		Date:       cronTestNow.Truncate(24 * time.Hour),
		IndexValue: decimal.RequireFromString("544.44"),
	}}
	engine := newCronTestServer(t, nil, index, nil, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cron/calculate-index", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	// Without ?date= the handler uses the injected clock, not the wall clock.
	if !index.got.Equal(cronTestNow) {
		t.Fatalf("expected default date %s from the clock, got %s", cronTestNow, index.got)
	}
}

func TestTriggerCalculateIndexNoData(t *testing.T) {
	engine := newCronTestServer(t, nil, &stubIndexSvc{err: indexdomain.ErrNoData}, nil, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cron/calculate-index", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty history must report 422, got %d", rec.Code)
	}
}

func TestTriggerDowngradeTrials(t *testing.T) {
	org := &stubOrgSvc{result: &orgdomain.DowngradeResult{Downgraded: 2, TotalExpired: 3, Errors: []string{"org 9: deadlock"}}}
	engine := newCronTestServer(t, nil, nil, org, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cron/downgrade-trials", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["downgraded"] != float64(2) || body["total_expired"] != float64(3) {
		t.Fatalf("unexpected counters: %v", body)
	}
}
