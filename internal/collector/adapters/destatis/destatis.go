// Package destatis fetches producer price index series from the federal
// statistics office. Series move slowly, so this source ranks just above the
// synthetic baseline in merge priority.
package destatis

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

const SourceName = "destatis"

// seriesBinding ties one statistics series to a material code and the EUR
// base price its index value scales (index 100 == base price).
type seriesBinding struct {
	Code      string
	BasePrice decimal.Decimal
}

var seriesBindings = map[string]seriesBinding{
	"GP09-2410": {Code: "steel-rebar", BasePrice: decimal.NewFromInt(600)},
	"GP09-2420": {Code: "steel-beam", BasePrice: decimal.NewFromInt(860)},
	"GP09-1610": {Code: "wood-spruce", BasePrice: decimal.NewFromInt(440)},
	"GP09-1621": {Code: "wood-osb", BasePrice: decimal.NewFromInt(300)},
	"GP09-2351": {Code: "cement-cem2", BasePrice: decimal.NewFromInt(140)},
	"GP09-2363": {Code: "concrete-c25", BasePrice: decimal.NewFromInt(108)},
	"GP09-2399": {Code: "insulation-rock", BasePrice: decimal.NewFromInt(80)},
}

type seriesResponse struct {
	Series []struct {
		Code  string  `json:"code"`
		Value float64 `json:"value"`
	} `json:"series"`
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
		log:     log.Named("adapter.destatis"),
	}
}

func (a *Adapter) Name() string { return SourceName }

func (a *Adapter) Fetch(ctx context.Context) (map[string]collectordomain.Quote, error) {
	if !a.limiter.Allow(ctx) {
		a.log.Warn("rate limited, returning no data")
		return map[string]collectordomain.Quote{}, nil
	}

	var body seriesResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/data/table?name=61241-0003")
	if err != nil {
		return nil, fmt.Errorf("destatis fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("destatis fetch: status %d", resp.StatusCode())
	}

	quotes := make(map[string]collectordomain.Quote, len(body.Series))
	for _, series := range body.Series {
		binding, ok := seriesBindings[series.Code]
		if !ok || series.Value <= 0 {
			continue
		}
		price := binding.BasePrice.
			Mul(decimal.NewFromFloat(series.Value)).
			Div(decimal.NewFromInt(100)).
			Round(2)
		quotes[binding.Code] = collectordomain.Quote{PriceEUR: price, Source: SourceName}
	}
	return quotes, nil
}
