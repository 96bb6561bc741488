package service

import (
	"context"
	"fmt"
	"sync"

	collectordomain "github.com/baulytics/baupreis/internal/collector/domain"
	"github.com/baulytics/baupreis/internal/clock"
	materialdomain "github.com/baulytics/baupreis/internal/material/domain"
	obsmetrics "github.com/baulytics/baupreis/internal/observability/metrics"
	pricedomain "github.com/baulytics/baupreis/internal/price/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	MaterialRepo materialdomain.Repository
	PriceRepo    pricedomain.Repository
	// Adapters in merge priority order, lowest precedence first.
	Adapters []collectordomain.Adapter `name:"priceAdapters"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	materialRepo materialdomain.Repository
	priceRepo    pricedomain.Repository
	adapters     []collectordomain.Adapter
}

func New(p Params) collectordomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("collector.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		materialRepo: p.MaterialRepo,
		priceRepo:    p.PriceRepo,
		adapters:     p.Adapters,
	}
}

type fetchOutcome struct {
	source string
	quotes map[string]collectordomain.Quote
	err    error
}

// Collect fans out to all adapters, merges their quotes under the fixed
// priority order and persists the winners. The returned RunResult is non-nil
// even when err is non-nil so partial counters survive run-fatal failures.
func (s *Service) Collect(ctx context.Context) (*collectordomain.RunResult, error) {
	result := &collectordomain.RunResult{Sources: map[string]int{}}
	jobMetrics := obsmetrics.Jobs()

	// Resolve the catalog up front: without it nothing can be persisted,
	// so a failure here is run-fatal.
	codeIndex, err := s.materialRepo.ActiveCodeIndex(ctx, s.db)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("catalog: %v", err))
		return result, fmt.Errorf("%w: %v", collectordomain.ErrCatalogUnavailable, err)
	}

	runStart := s.clock.Now()
	outcomes := s.fetchAll(ctx)

	merged := s.merge(outcomes, result)

	// Persist winners with one consistent timestamp for the whole run.
	// A single row failure is recorded and skipped, never aborts the rest.
	for code, quote := range merged {
		materialID, ok := codeIndex[code]
		if !ok {
			// Catalog drift: adapters may know codes the catalog no
			// longer carries. Not an error.
			result.Skipped++
			jobMetrics.IncPriceSkipped("unknown_code")
			s.log.Debug("skipping unresolvable material code", zap.String("code", code))
			continue
		}

		point := &pricedomain.PricePoint{
			ID:         s.genID.Generate(),
			MaterialID: materialID,
			Timestamp:  runStart,
			PriceEUR:   quote.PriceEUR,
			Source:     quote.Source,
		}
		if err := s.priceRepo.Insert(ctx, s.db, point); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("insert %s: %v", code, err))
			jobMetrics.IncPriceSkipped("insert_error")
			s.log.Warn("price insert failed",
				zap.String("code", code),
				zap.Error(err),
			)
			continue
		}
		result.Collected++
		result.Sources[quote.Source]++
	}

	for source, count := range result.Sources {
		jobMetrics.AddPricesWritten(source, count)
	}

	s.log.Info("collection run finished",
		zap.Int("collected", result.Collected),
		zap.Int("skipped", result.Skipped),
		zap.Int("source_errors", len(result.Errors)),
		zap.Time("run_ts", runStart),
	)
	return result, nil
}

// fetchAll invokes every adapter concurrently and waits for all of them to
// settle. One adapter's failure never blocks or cancels the others; each
// carries its own timeout on top of the caller's deadline.
func (s *Service) fetchAll(ctx context.Context) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(s.adapters))

	var wg sync.WaitGroup
	for i, adapter := range s.adapters {
		wg.Add(1)
		go func(i int, adapter collectordomain.Adapter) {
			defer wg.Done()
			quotes, err := adapter.Fetch(ctx)
			outcomes[i] = fetchOutcome{source: adapter.Name(), quotes: quotes, err: err}
		}(i, adapter)
	}
	wg.Wait()

	return outcomes
}

// merge combines adapter outputs by iterating them in priority order and
// unconditionally overwriting per code: the highest-priority adapter that
// returned a value for a code wins. This is a selection, never an average,
// and the winning adapter's source label travels with the price.
func (s *Service) merge(outcomes []fetchOutcome, result *collectordomain.RunResult) map[string]collectordomain.Quote {
	jobMetrics := obsmetrics.Jobs()
	merged := make(map[string]collectordomain.Quote)

	for _, outcome := range outcomes {
		if outcome.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", outcome.source, outcome.err))
			jobMetrics.IncSourceError(outcome.source)
			s.log.Warn("source fetch failed",
				zap.String("source", outcome.source),
				zap.Error(outcome.err),
			)
			continue
		}
		for code, quote := range outcome.quotes {
			merged[code] = quote
		}
	}
	return merged
}
