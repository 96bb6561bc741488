package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	pricedomain "github.com/baulytics/baupreis/internal/price/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, point *pricedomain.PricePoint) error {
	return db.WithContext(ctx).Create(point).Error
}

func (r *repo) LatestAtOrBefore(ctx context.Context, db *gorm.DB, materialID snowflake.ID, at time.Time) (*pricedomain.PricePoint, error) {
	var p pricedomain.PricePoint
	err := db.WithContext(ctx).
		Where("material_id = ? AND timestamp <= ?", materialID, at).
		Order("timestamp DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) ListByMaterial(ctx context.Context, db *gorm.DB, materialID snowflake.ID, since time.Time) ([]pricedomain.PricePoint, error) {
	var items []pricedomain.PricePoint
	err := db.WithContext(ctx).
		Where("material_id = ? AND timestamp >= ?", materialID, since).
		Order("timestamp ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) LatestTimestamp(ctx context.Context, db *gorm.DB) (*time.Time, error) {
	var row struct {
		Ts *time.Time
	}
	err := db.WithContext(ctx).Raw(`SELECT MAX(timestamp) AS ts FROM prices`).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return row.Ts, nil
}
