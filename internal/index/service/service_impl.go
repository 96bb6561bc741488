package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/baulytics/baupreis/internal/config"
	indexdomain "github.com/baulytics/baupreis/internal/index/domain"
	materialdomain "github.com/baulytics/baupreis/internal/material/domain"
	pricedomain "github.com/baulytics/baupreis/internal/price/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Weights      *config.WeightsHolder
	Repo         indexdomain.Repository
	MaterialRepo materialdomain.Repository
	PriceRepo    pricedomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	weights      *config.WeightsHolder
	repo         indexdomain.Repository
	materialRepo materialdomain.Repository
	priceRepo    pricedomain.Repository
}

func New(p Params) indexdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("index.service"),
		genID:        p.GenID,
		weights:      p.Weights,
		repo:         p.Repo,
		materialRepo: p.MaterialRepo,
		priceRepo:    p.PriceRepo,
	}
}

// valuation is the weighted aggregate for one cutoff instant.
type valuation struct {
	value      decimal.Decimal
	components []indexdomain.Component
}

// Calculate computes the composite index for the given calendar date and
// upserts the record. It is a pure function of the price history at call
// time, so recalculating a past date after a backfill is safe.
func (s *Service) Calculate(ctx context.Context, date time.Time) (*indexdomain.IndexRecord, error) {
	day := truncateToDay(date)
	cutoff := day.Add(24*time.Hour - time.Nanosecond)

	materials, err := s.materialRepo.ListActive(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}

	current, err := s.valueAt(ctx, materials, cutoff)
	if err != nil {
		return nil, err
	}

	record := &indexdomain.IndexRecord{
		ID:           s.genID.Generate(),
		Date:         day,
		IndexValue:   current.value,
		ChangePct1D:  s.changePct(ctx, materials, current.value, cutoff, 1),
		ChangePct7D:  s.changePct(ctx, materials, current.value, cutoff, 7),
		ChangePct30D: s.changePct(ctx, materials, current.value, cutoff, 30),
	}

	componentsJSON, err := json.Marshal(current.components)
	if err != nil {
		return nil, fmt.Errorf("marshal components: %w", err)
	}
	record.Components = datatypes.JSON(componentsJSON)

	if err := s.repo.Upsert(ctx, s.db, record); err != nil {
		return nil, fmt.Errorf("upsert index record: %w", err)
	}

	s.log.Info("index calculated",
		zap.String("date", day.Format("2006-01-02")),
		zap.String("index_value", record.IndexValue.String()),
	)
	return record, nil
}

// valueAt computes the weighted category aggregate over the latest price of
// each active material at or before cutoff. Categories without any data drop
// out and the remaining weights are renormalized.
func (s *Service) valueAt(ctx context.Context, materials []materialdomain.Material, cutoff time.Time) (*valuation, error) {
	type categoryAccumulator struct {
		sum     decimal.Decimal
		samples int
	}
	byCategory := make(map[string]*categoryAccumulator)

	for _, m := range materials {
		point, err := s.priceRepo.LatestAtOrBefore(ctx, s.db, m.ID, cutoff)
		if err != nil {
			return nil, fmt.Errorf("load price for %s: %w", m.Code, err)
		}
		if point == nil {
			continue
		}
		acc, ok := byCategory[string(m.Category)]
		if !ok {
			acc = &categoryAccumulator{sum: decimal.Zero}
			byCategory[string(m.Category)] = acc
		}
		acc.sum = acc.sum.Add(point.PriceEUR)
		acc.samples++
	}
	if len(byCategory) == 0 {
		return nil, indexdomain.ErrNoData
	}

	weights := s.weights.Get().Categories

	// Only categories with data participate; their configured weights are
	// renormalized so the index stays comparable when a category is dark.
	totalWeight := decimal.Zero
	for category := range byCategory {
		if w, ok := weights[category]; ok {
			totalWeight = totalWeight.Add(decimal.NewFromFloat(w))
		}
	}
	if totalWeight.IsZero() {
		return nil, indexdomain.ErrNoData
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	value := decimal.Zero
	components := make([]indexdomain.Component, 0, len(categories))
	for _, category := range categories {
		w, ok := weights[category]
		if !ok {
			continue
		}
		acc := byCategory[category]
		categoryValue := acc.sum.DivRound(decimal.NewFromInt(int64(acc.samples)), 4)
		weight := decimal.NewFromFloat(w).DivRound(totalWeight, 6)
		contribution := categoryValue.Mul(weight).Round(4)
		value = value.Add(contribution)

		components = append(components, indexdomain.Component{
			Category:     category,
			Value:        categoryValue,
			Weight:       weight,
			Contribution: contribution,
			Samples:      acc.samples,
		})
	}

	return &valuation{value: value.Round(2), components: components}, nil
}

// changePct computes the trailing delta against the valuation `days` back.
// A missing historical value yields nil, never zero.
func (s *Service) changePct(ctx context.Context, materials []materialdomain.Material, current decimal.Decimal, cutoff time.Time, days int) *decimal.Decimal {
	past, err := s.valueAt(ctx, materials, cutoff.AddDate(0, 0, -days))
	if err != nil {
		if !errors.Is(err, indexdomain.ErrNoData) {
			s.log.Warn("lookback valuation failed",
				zap.Int("days", days),
				zap.Error(err),
			)
		}
		return nil
	}
	if past.value.IsZero() {
		return nil
	}

	pct := current.Sub(past.value).
		DivRound(past.value, 6).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return &pct
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
