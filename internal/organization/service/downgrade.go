package service

import (
	"context"
	"fmt"

	"github.com/baulytics/baupreis/internal/clock"
	orgdomain "github.com/baulytics/baupreis/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  orgdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  orgdomain.Repository
}

func New(p Params) orgdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// DowngradeExpiredTrials transitions every expired trial to basis. Each
// organization gets its own transaction so one failure never affects the
// others; organizations already transitioned by a concurrent run are
// detected by the guarded update and skipped silently.
func (s *Service) DowngradeExpiredTrials(ctx context.Context) (*orgdomain.DowngradeResult, error) {
	now := s.clock.Now()
	result := &orgdomain.DowngradeResult{}

	candidates, err := s.repo.ListExpiredTrials(ctx, s.db, now)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list expired trials: %v", err))
		return result, err
	}
	result.TotalExpired = len(candidates)

	limits, ok := orgdomain.PlanLimits[orgdomain.PlanBasis]
	if !ok {
		return result, fmt.Errorf("no limits configured for plan %s", orgdomain.PlanBasis)
	}

	for _, org := range candidates {
		applied := false
		err := s.db.Transaction(func(tx *gorm.DB) error {
			affected, err := s.repo.DowngradeGuarded(ctx, tx, org.ID, orgdomain.PlanBasis, limits, now)
			if err != nil {
				return fmt.Errorf("downgrade: %w", err)
			}
			if affected == 0 {
				// Already transitioned by an earlier or concurrent run.
				return nil
			}

			if err := s.repo.TrimSelectedMaterials(ctx, tx, org.ID, limits.MaxMaterials); err != nil {
				return fmt.Errorf("trim materials: %w", err)
			}
			if err := s.repo.DeactivateExcessAlertRules(ctx, tx, org.ID, limits.MaxAlerts); err != nil {
				return fmt.Errorf("deactivate alerts: %w", err)
			}

			applied = true
			return nil
		})
		if err == nil && applied {
			result.Downgraded++
			s.log.Info("organization downgraded",
				zap.Int64("org_id", int64(org.ID)),
				zap.String("from", string(orgdomain.PlanTrial)),
				zap.String("to", string(orgdomain.PlanBasis)),
			)
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("org %d: %v", org.ID, err))
			s.log.Warn("organization downgrade failed",
				zap.Int64("org_id", int64(org.ID)),
				zap.Error(err),
			)
		}
	}

	return result, nil
}
