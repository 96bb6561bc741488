package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	materialdomain "github.com/baulytics/baupreis/internal/material/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() materialdomain.Repository {
	return &repo{}
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]materialdomain.Material, error) {
	var items []materialdomain.Material
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ActiveCodeIndex(ctx context.Context, db *gorm.DB) (map[string]snowflake.ID, error) {
	var rows []struct {
		ID   snowflake.ID
		Code string
	}
	err := db.WithContext(ctx).Raw(
		`SELECT id, code FROM materials WHERE is_active = ?`, true,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	index := make(map[string]snowflake.ID, len(rows))
	for _, row := range rows {
		index[row.Code] = row.ID
	}
	return index, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*materialdomain.Material, error) {
	var m materialdomain.Material
	err := db.WithContext(ctx).Where("code = ?", code).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, material *materialdomain.Material) error {
	return db.WithContext(ctx).Create(material).Error
}
