package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baulytics/baupreis/internal/clock"
	indexdomain "github.com/baulytics/baupreis/internal/index/domain"
	indexrepo "github.com/baulytics/baupreis/internal/index/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newIndexTestServer(t *testing.T, now time.Time) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&indexdomain.IndexRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	s := &Server{
		engine:    engine,
		db:        db,
		log:       zap.NewNop(),
		clock:     clock.NewFakeClock(now),
		indexRepo: indexrepo.Provide(),
	}
	engine.GET("/api/index/history", s.GetIndexHistory)
	return engine, db
}

func seedIndexRecord(t *testing.T, db *gorm.DB, node *snowflake.Node, date time.Time, value string) {
	t.Helper()
	record := indexdomain.IndexRecord{
		ID:         node.Generate(),
		Date:       date,
		IndexValue: decimal.RequireFromString(value),
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("seed index record: %v", err)
	}
}

func TestGetIndexHistoryWindowUsesClock(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	engine, db := newIndexTestServer(t, now)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	seedIndexRecord(t, db, node, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), "544.44")
	seedIndexRecord(t, db, node, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), "531.02")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/index/history?days=7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		History []indexdomain.IndexRecord `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// The window is anchored at the injected clock, so only the record from
	// two days earlier falls inside days=7.
	if len(body.History) != 1 {
		t.Fatalf("expected 1 record inside the window, got %d", len(body.History))
	}
	if !body.History[0].IndexValue.Equal(decimal.RequireFromString("544.44")) {
		t.Fatalf("unexpected record in window: %s", body.History[0].IndexValue)
	}
}

func TestGetIndexHistoryRejectsBadDays(t *testing.T) {
	engine, _ := newIndexTestServer(t, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC))

	for _, raw := range []string{"0", "-3", "abc", "2000"} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/index/history?days="+raw, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("days=%s must report 400, got %d", raw, rec.Code)
		}
	}
}
