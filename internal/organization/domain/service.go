package domain

import (
	"context"
)

// DowngradeResult tallies one downgrade run.
type DowngradeResult struct {
	Downgraded   int      `json:"downgraded"`
	TotalExpired int      `json:"total_expired"`
	Errors       []string `json:"errors,omitempty"`
}

type Service interface {
	// DowngradeExpiredTrials moves every expired trial organization to the
	// basis plan, each in its own transaction. Re-running immediately after
	// a successful run performs zero plan mutations.
	DowngradeExpiredTrials(ctx context.Context) (*DowngradeResult, error)
}
