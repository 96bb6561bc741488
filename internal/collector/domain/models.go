// Package domain defines the collection pipeline contracts.
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Quote is a transient per-adapter observation. It only exists in memory
// during one collection run and is persisted as a PricePoint after the merge.
type Quote struct {
	PriceEUR decimal.Decimal `json:"price_eur"`
	Source   string          `json:"source"`
}

// Adapter fetches and normalizes prices from one external provider.
//
// Implementations apply their own bounded network timeout, convert to EUR and
// key results by the shared material-code vocabulary. "No data available" is
// an empty map, not an error; errors are reserved for unexpected failures
// (network, auth, malformed response). The map-valued result makes duplicate
// codes within one adapter's output impossible by construction.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) (map[string]Quote, error)
}

// RunResult tallies one collection run. A non-empty Errors list with work
// done is a partial failure, distinct from a run-fatal error.
type RunResult struct {
	Collected int            `json:"collected"`
	Skipped   int            `json:"skipped"`
	Sources   map[string]int `json:"sources"`
	Errors    []string       `json:"errors,omitempty"`
}

type Service interface {
	// Collect runs the full fan-out → merge → persist pipeline. It returns
	// a result even on failure so partial counters are never lost.
	Collect(ctx context.Context) (*RunResult, error)
}

var ErrCatalogUnavailable = errors.New("catalog_unavailable")
