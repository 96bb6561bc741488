package repository

import (
	"context"
	"errors"
	"time"

	indexdomain "github.com/baulytics/baupreis/internal/index/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() indexdomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, record *indexdomain.IndexRecord) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"index_value",
			"change_pct_1d",
			"change_pct_7d",
			"change_pct_30d",
			"components_json",
			"updated_at",
		}),
	}).Create(record).Error
}

func (r *repo) FindByDate(ctx context.Context, db *gorm.DB, date time.Time) (*indexdomain.IndexRecord, error) {
	var rec indexdomain.IndexRecord
	err := db.WithContext(ctx).Where("date = ?", date).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *repo) Latest(ctx context.Context, db *gorm.DB) (*indexdomain.IndexRecord, error) {
	var rec indexdomain.IndexRecord
	err := db.WithContext(ctx).Order("date DESC").First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *repo) ListSince(ctx context.Context, db *gorm.DB, since time.Time) ([]indexdomain.IndexRecord, error) {
	var items []indexdomain.IndexRecord
	err := db.WithContext(ctx).
		Where("date >= ?", since).
		Order("date ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
