package repository

import (
	"context"
	"time"

	orgdomain "github.com/baulytics/baupreis/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orgdomain.Repository {
	return &repo{}
}

func (r *repo) ListExpiredTrials(ctx context.Context, db *gorm.DB, now time.Time) ([]orgdomain.Organization, error) {
	var items []orgdomain.Organization
	err := db.WithContext(ctx).
		Where("plan = ? AND trial_ends_at < ? AND is_active = ?", orgdomain.PlanTrial, now, true).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DowngradeGuarded(ctx context.Context, db *gorm.DB, orgID snowflake.ID, target orgdomain.Plan, limits orgdomain.Limits, now time.Time) (int64, error) {
	// The plan guard in the WHERE clause is the idempotency mechanism: a
	// repeated or concurrent run matches zero rows instead of failing.
	res := db.WithContext(ctx).
		Model(&orgdomain.Organization{}).
		Where("id = ? AND plan = ?", orgID, orgdomain.PlanTrial).
		Updates(map[string]any{
			"plan":          target,
			"max_materials": limits.MaxMaterials,
			"max_users":     limits.MaxUsers,
			"max_alerts":    limits.MaxAlerts,
			"features":      datatypes.JSONMap(limits.Features),
			"updated_at":    now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) TrimSelectedMaterials(ctx context.Context, db *gorm.DB, orgID snowflake.ID, keep int) error {
	var keepIDs []snowflake.ID
	err := db.WithContext(ctx).
		Model(&orgdomain.SelectedMaterial{}).
		Where("org_id = ?", orgID).
		Order("position ASC, created_at ASC, id ASC").
		Limit(keep).
		Pluck("id", &keepIDs).Error
	if err != nil {
		return err
	}

	query := db.WithContext(ctx).Where("org_id = ?", orgID)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}
	return query.Delete(&orgdomain.SelectedMaterial{}).Error
}

func (r *repo) DeactivateExcessAlertRules(ctx context.Context, db *gorm.DB, orgID snowflake.ID, keep int) error {
	var keepIDs []snowflake.ID
	err := db.WithContext(ctx).
		Model(&orgdomain.AlertRule{}).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("created_at DESC, id DESC").
		Limit(keep).
		Pluck("id", &keepIDs).Error
	if err != nil {
		return err
	}

	query := db.WithContext(ctx).
		Model(&orgdomain.AlertRule{}).
		Where("org_id = ? AND is_active = ?", orgID, true)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}
	return query.Update("is_active", false).Error
}

func (r *repo) ListSelectedMaterials(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]orgdomain.SelectedMaterial, error) {
	var items []orgdomain.SelectedMaterial
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("position ASC, created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
