// Package domain contains the price history models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PricePoint is one observation of a material price. Rows are append-only:
// the core never updates or deletes them, and several points per material
// per day are expected. Source names the adapter whose value won the merge
// for the run, never a blended value.
type PricePoint struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	MaterialID snowflake.ID    `gorm:"not null;index:ix_prices_material_ts,priority:1" json:"material_id"`
	Timestamp  time.Time       `gorm:"not null;index:ix_prices_material_ts,priority:2" json:"timestamp"`
	PriceEUR   decimal.Decimal `gorm:"type:numeric;not null;column:price_eur" json:"price_eur"`
	Source     string          `gorm:"type:text;not null" json:"source"`
}

// TableName sets the database table name.
func (PricePoint) TableName() string { return "prices" }
