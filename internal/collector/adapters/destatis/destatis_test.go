package destatis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestFetchScalesIndexValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"series":[
			{"code":"GP09-2410","value":105.0},
			{"code":"GP09-1610","value":0},
			{"code":"GP09-9999","value":120.0}
		]}`))
	}))
	defer srv.Close()

	adapter := New(srv.URL, 2*time.Second, nil, zap.NewNop())
	quotes, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote (zero values and unbound series skipped), got %d", len(quotes))
	}
	// Index 105 against a base price of 600.
	want := decimal.RequireFromString("630")
	if got := quotes["steel-rebar"].PriceEUR; !got.Equal(want) {
		t.Fatalf("expected scaled price %s, got %s", want, got)
	}
	if quotes["steel-rebar"].Source != SourceName {
		t.Fatalf("expected source %s, got %s", SourceName, quotes["steel-rebar"].Source)
	}
}

func TestFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	adapter := New(srv.URL, 2*time.Second, nil, zap.NewNop())
	if _, err := adapter.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
