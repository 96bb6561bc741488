package baumarkt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestFetchSkipsOutOfStockAndUnknownSKUs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"sku":"BM-ST-REBAR-12","price_eur":618.50,"in_stock":true},
			{"sku":"BM-HO-OSB-18","price_eur":305.00,"in_stock":false},
			{"sku":"BM-XX-UNKNOWN","price_eur":9.99,"in_stock":true},
			{"sku":"BM-BE-C25-M3","price_eur":0,"in_stock":true}
		]}`))
	}))
	defer srv.Close()

	adapter := New(srv.URL, 2*time.Second, nil, zap.NewNop())
	quotes, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(quotes) != 1 {
		t.Fatalf("expected only the in-stock bound SKU, got %d quotes", len(quotes))
	}
	want := decimal.RequireFromString("618.50")
	if got := quotes["steel-rebar"].PriceEUR; !got.Equal(want) {
		t.Fatalf("expected price %s, got %s", want, got)
	}
}
