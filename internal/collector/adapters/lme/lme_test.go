package lme

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	materialdomain "github.com/baulytics/baupreis/internal/material/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type catalogStub struct {
	materials []materialdomain.Material
	err       error
}

func (s *catalogStub) ListActive(ctx context.Context, db *gorm.DB) ([]materialdomain.Material, error) {
	return s.materials, s.err
}

func (s *catalogStub) ActiveCodeIndex(ctx context.Context, db *gorm.DB) (map[string]snowflake.ID, error) {
	return nil, nil
}

func (s *catalogStub) FindByCode(ctx context.Context, db *gorm.DB, code string) (*materialdomain.Material, error) {
	return nil, nil
}

func (s *catalogStub) Insert(ctx context.Context, db *gorm.DB, material *materialdomain.Material) error {
	return nil
}

func metalsCatalog() *catalogStub {
	return &catalogStub{materials: []materialdomain.Material{
		{Code: "copper-cable", LMESymbol: "copper", IsActive: true},
		{Code: "aluminium-profile", LMESymbol: "aluminium", IsActive: true},
		{Code: "steel-rebar", IsActive: true},
	}}
}

func TestFetchConvertsUSDToEUR(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"currency": "USD",
			"rates": {"copper": 9500, "aluminium": 2600, "nickel": 17000},
			"eurusd": 1.08
		}`))
	}))
	defer srv.Close()

	adapter := New(srv.URL, "", 2*time.Second, nil, metalsCatalog(), nil, zap.NewNop())
	quotes, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(quotes) != 2 {
		t.Fatalf("expected quotes only for catalog symbols, got %d", len(quotes))
	}
	want := decimal.RequireFromString("8796.30")
	if got := quotes["copper-cable"].PriceEUR; !got.Equal(want) {
		t.Fatalf("expected converted price %s, got %s", want, got)
	}
}

func TestFetchEURPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"currency": "EUR", "rates": {"copper": 8900.456}}`))
	}))
	defer srv.Close()

	adapter := New(srv.URL, "", 2*time.Second, nil, metalsCatalog(), nil, zap.NewNop())
	quotes, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	want := decimal.RequireFromString("8900.46")
	if got := quotes["copper-cable"].PriceEUR; !got.Equal(want) {
		t.Fatalf("expected rounded EUR price %s, got %s", want, got)
	}
}

func TestFetchMissingEURUSDRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"currency": "USD", "rates": {"copper": 9500}}`))
	}))
	defer srv.Close()

	adapter := New(srv.URL, "", 2*time.Second, nil, metalsCatalog(), nil, zap.NewNop())
	if _, err := adapter.Fetch(context.Background()); err == nil {
		t.Fatal("USD quotes without a conversion rate must fail, not guess")
	}
}

func TestFetchNoSymbolsNoRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	catalog := &catalogStub{materials: []materialdomain.Material{{Code: "wood-spruce", IsActive: true}}}
	adapter := New(srv.URL, "", 2*time.Second, nil, catalog, nil, zap.NewNop())
	quotes, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("expected no quotes, got %d", len(quotes))
	}
	if requests != 0 {
		t.Fatalf("a catalog without symbols must not hit the exchange, saw %d requests", requests)
	}
}
