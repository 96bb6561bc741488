// Package domain contains the material catalog models.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Category groups materials for index weighting.
type Category string

const (
	CategorySteel      Category = "steel"
	CategoryWood       Category = "wood"
	CategoryConcrete   Category = "concrete"
	CategoryMetals     Category = "metals"
	CategoryEnergy     Category = "energy"
	CategoryInsulation Category = "insulation"
)

// Material is an immutable catalog entry. Code is the stable external key
// shared with all source adapters; the catalog is read-only during a
// collection run.
type Material struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"type:text;not null;uniqueIndex:ux_materials_code" json:"code"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Category  Category     `gorm:"type:text;not null;index" json:"category"`
	Unit      string       `gorm:"type:text;not null" json:"unit"`
	LMESymbol string       `gorm:"type:text;column:lme_symbol" json:"lme_symbol,omitempty"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Material) TableName() string { return "materials" }

var ErrNotFound = errors.New("material_not_found")
