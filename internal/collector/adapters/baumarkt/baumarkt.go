// Package baumarkt fetches retail spot prices from the Baumarkt price feed.
package baumarkt

import (
	"context"
	"fmt"
	"time"

	collectordomain "github.com/baulytics/baupreis/internal/collector/domain"
	"github.com/baulytics/baupreis/internal/ratelimit"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const SourceName = "baumarkt"

// skuBindings maps feed SKUs to the shared material-code vocabulary.
var skuBindings = map[string]string{
	"BM-ST-REBAR-12": "steel-rebar",
	"BM-ST-SHEET-2":  "steel-sheet",
	"BM-HO-KVH-6":    "wood-kvh",
	"BM-HO-OSB-18":   "wood-osb",
	"BM-BE-C25-M3":   "concrete-c25",
	"BM-KI-16-T":     "gravel-16",
	"BM-DA-EPS-100":  "insulation-eps",
	"BM-EN-BIT-T":    "bitumen",
}

type priceResponse struct {
	Items []struct {
		SKU      string  `json:"sku"`
		PriceEUR float64 `json:"price_eur"`
		InStock  bool    `json:"in_stock"`
	} `json:"items"`
}

type Adapter struct {
	client  *resty.Client
	limiter *ratelimit.SourceLimiter
	log     *zap.Logger
}

func New(baseURL string, timeout time.Duration, limiter *ratelimit.SourceLimiter, log *zap.Logger) *Adapter {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Adapter{
		client:  client,
		limiter: limiter,
		log:     log.Named("adapter.baumarkt"),
	}
}

func (a *Adapter) Name() string { return SourceName }

func (a *Adapter) Fetch(ctx context.Context) (map[string]collectordomain.Quote, error) {
	if !a.limiter.Allow(ctx) {
		a.log.Warn("rate limited, returning no data")
		return map[string]collectordomain.Quote{}, nil
	}

	var body priceResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/prices/construction")
	if err != nil {
		return nil, fmt.Errorf("baumarkt fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("baumarkt fetch: status %d", resp.StatusCode())
	}

	quotes := make(map[string]collectordomain.Quote, len(body.Items))
	for _, item := range body.Items {
		code, ok := skuBindings[item.SKU]
		if !ok || item.PriceEUR <= 0 {
			continue
		}
		// Out-of-stock listings keep stale prices, skip them.
		if !item.InStock {
			continue
		}
		quotes[code] = collectordomain.Quote{
			PriceEUR: decimal.NewFromFloat(item.PriceEUR).Round(2),
			Source:   SourceName,
		}
	}
	return quotes, nil
}
