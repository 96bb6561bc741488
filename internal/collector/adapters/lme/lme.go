// Package lme fetches exchange quotations for metals. It is the freshest
// source and therefore has the highest merge priority, but only covers
// materials with an LME symbol in the catalog.
package lme

import (
	"context"
	"fmt"
	"time"

	collectordomain "github.com/baulytics/baupreis/internal/collector/domain"
	materialdomain "github.com/baulytics/baupreis/internal/material/domain"
	"github.com/baulytics/baupreis/internal/ratelimit"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const SourceName = "lme"

type ratesResponse struct {
	Currency string             `json:"currency"`
	Rates    map[string]float64 `json:"rates"`
	EURUSD   float64            `json:"eurusd"`
}

type Adapter struct {
	client  *resty.Client
	db      *gorm.DB
	repo    materialdomain.Repository
	limiter *ratelimit.SourceLimiter
	log     *zap.Logger
}

func New(baseURL, apiKey string, timeout time.Duration, db *gorm.DB, repo materialdomain.Repository, limiter *ratelimit.SourceLimiter, log *zap.Logger) *Adapter {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetQueryParam("api_key", apiKey)
	}

	return &Adapter{
		client:  client,
		db:      db,
		repo:    repo,
		limiter: limiter,
		log:     log.Named("adapter.lme"),
	}
}

func (a *Adapter) Name() string { return SourceName }

func (a *Adapter) Fetch(ctx context.Context) (map[string]collectordomain.Quote, error) {
	if !a.limiter.Allow(ctx) {
		a.log.Warn("rate limited, returning no data")
		return map[string]collectordomain.Quote{}, nil
	}

	materials, err := a.repo.ListActive(ctx, a.db)
	if err != nil {
		return nil, fmt.Errorf("lme load symbols: %w", err)
	}
	symbolToCode := make(map[string]string)
	for _, m := range materials {
		if m.LMESymbol != "" {
			symbolToCode[m.LMESymbol] = m.Code
		}
	}
	if len(symbolToCode) == 0 {
		return map[string]collectordomain.Quote{}, nil
	}

	var body ratesResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("metals", "all").
		SetResult(&body).
		Get("/latest")
	if err != nil {
		return nil, fmt.Errorf("lme fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("lme fetch: status %d", resp.StatusCode())
	}
	if body.Currency == "USD" && body.EURUSD <= 0 {
		return nil, fmt.Errorf("lme fetch: missing eurusd rate for USD quotes")
	}

	quotes := make(map[string]collectordomain.Quote, len(symbolToCode))
	for symbol, usd := range body.Rates {
		code, ok := symbolToCode[symbol]
		if !ok || usd <= 0 {
			continue
		}
		price := decimal.NewFromFloat(usd)
		if body.Currency == "USD" {
			price = price.DivRound(decimal.NewFromFloat(body.EURUSD), 2)
		} else {
			price = price.Round(2)
		}
		quotes[code] = collectordomain.Quote{PriceEUR: price, Source: SourceName}
	}
	return quotes, nil
}
