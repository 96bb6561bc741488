// Package synthetic provides the always-available baseline price source.
// It guarantees the merge has complete coverage of the active catalog even
// when every live source fails.
package synthetic

import (
	"context"

	collectordomain "github.com/baulytics/baupreis/internal/collector/domain"
	materialdomain "github.com/baulytics/baupreis/internal/material/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const SourceName = "synthetic"

// Baseline EUR values per material code. Stable reference prices, refreshed
// manually when the catalog changes.
var baselines = map[string]decimal.Decimal{
	"steel-rebar":       decimal.NewFromInt(620),
	"steel-beam":        decimal.NewFromInt(890),
	"steel-sheet":       decimal.NewFromInt(740),
	"wood-spruce":       decimal.NewFromInt(455),
	"wood-osb":          decimal.NewFromInt(310),
	"wood-kvh":          decimal.NewFromInt(520),
	"concrete-c25":      decimal.NewFromInt(112),
	"cement-cem2":       decimal.NewFromInt(145),
	"gravel-16":         decimal.NewFromInt(28),
	"copper-cable":      decimal.NewFromInt(8900),
	"aluminium-profile": decimal.NewFromInt(2450),
	"zinc-sheet":        decimal.NewFromInt(2700),
	"diesel":            decimal.NewFromFloat(1.62),
	"bitumen":           decimal.NewFromInt(540),
	"insulation-eps":    decimal.NewFromInt(68),
	"insulation-rock":   decimal.NewFromInt(84),
}

const defaultBaseline = 100

type Adapter struct {
	db   *gorm.DB
	repo materialdomain.Repository
}

func New(db *gorm.DB, repo materialdomain.Repository) *Adapter {
	return &Adapter{db: db, repo: repo}
}

func (a *Adapter) Name() string { return SourceName }

// Fetch returns a fixed baseline for every active material code. It never
// fails except when the catalog itself is unreachable.
func (a *Adapter) Fetch(ctx context.Context) (map[string]collectordomain.Quote, error) {
	materials, err := a.repo.ListActive(ctx, a.db)
	if err != nil {
		return nil, err
	}

	quotes := make(map[string]collectordomain.Quote, len(materials))
	for _, m := range materials {
		price, ok := baselines[m.Code]
		if !ok {
			price = decimal.NewFromInt(defaultBaseline)
		}
		quotes[m.Code] = collectordomain.Quote{PriceEUR: price, Source: SourceName}
	}
	return quotes, nil
}
