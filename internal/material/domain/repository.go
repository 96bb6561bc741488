package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListActive(ctx context.Context, db *gorm.DB) ([]Material, error)
	// ActiveCodeIndex resolves the shared material-code vocabulary to
	// internal ids for one collection run.
	ActiveCodeIndex(ctx context.Context, db *gorm.DB) (map[string]snowflake.ID, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Material, error)
	Insert(ctx context.Context, db *gorm.DB, material *Material) error
}
