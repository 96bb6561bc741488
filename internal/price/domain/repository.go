package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, point *PricePoint) error
	// LatestAtOrBefore returns the newest observation with timestamp <= at,
	// or nil when the material has no history that old.
	LatestAtOrBefore(ctx context.Context, db *gorm.DB, materialID snowflake.ID, at time.Time) (*PricePoint, error)
	ListByMaterial(ctx context.Context, db *gorm.DB, materialID snowflake.ID, since time.Time) ([]PricePoint, error)
	LatestTimestamp(ctx context.Context, db *gorm.DB) (*time.Time, error)
}
