package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// Upsert inserts the record or, on a date conflict, overwrites every
	// computed field.
	Upsert(ctx context.Context, db *gorm.DB, record *IndexRecord) error
	FindByDate(ctx context.Context, db *gorm.DB, date time.Time) (*IndexRecord, error)
	Latest(ctx context.Context, db *gorm.DB) (*IndexRecord, error)
	ListSince(ctx context.Context, db *gorm.DB, since time.Time) ([]IndexRecord, error)
}
