package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListExpiredTrials(ctx context.Context, db *gorm.DB, now time.Time) ([]Organization, error)
	// DowngradeGuarded applies plan and limit fields with a WHERE plan =
	// 'trial' guard in the same statement and reports how many rows were
	// touched. Zero rows means a concurrent or earlier run already
	// transitioned the organization.
	DowngradeGuarded(ctx context.Context, db *gorm.DB, orgID snowflake.ID, target Plan, limits Limits, now time.Time) (int64, error)
	// TrimSelectedMaterials deletes selection entries beyond keep, retaining
	// the earliest-added in their original order.
	TrimSelectedMaterials(ctx context.Context, db *gorm.DB, orgID snowflake.ID, keep int) error
	// DeactivateExcessAlertRules keeps the keep most-recently-created rules
	// active and deactivates the rest.
	DeactivateExcessAlertRules(ctx context.Context, db *gorm.DB, orgID snowflake.ID, keep int) error
	ListSelectedMaterials(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]SelectedMaterial, error)
}
