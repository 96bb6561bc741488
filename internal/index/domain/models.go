// Package domain contains the composite index models.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// IndexRecord is the composite BauPreis index for one calendar date. Rows
// are upserted by date: recomputing a past date overwrites all computed
// fields, which makes backfills after late source corrections safe.
type IndexRecord struct {
	ID           snowflake.ID     `gorm:"primaryKey" json:"id"`
	Date         time.Time        `gorm:"type:date;not null;uniqueIndex:ux_baupreis_index_date" json:"date"`
	IndexValue   decimal.Decimal  `gorm:"type:numeric;not null;column:index_value" json:"index_value"`
	ChangePct1D  *decimal.Decimal `gorm:"type:numeric;column:change_pct_1d" json:"change_pct_1d"`
	ChangePct7D  *decimal.Decimal `gorm:"type:numeric;column:change_pct_7d" json:"change_pct_7d"`
	ChangePct30D *decimal.Decimal `gorm:"type:numeric;column:change_pct_30d" json:"change_pct_30d"`
	Components   datatypes.JSON   `gorm:"type:jsonb;column:components_json" json:"components"`
	CreatedAt    time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (IndexRecord) TableName() string { return "baupreis_index" }

// Component captures one category's contribution for auditability.
type Component struct {
	Category     string          `json:"category"`
	Value        decimal.Decimal `json:"value"`
	Weight       decimal.Decimal `json:"weight"`
	Contribution decimal.Decimal `json:"contribution"`
	Samples      int             `json:"samples"`
}

type Service interface {
	// Calculate derives the index for date from price history up to and
	// including date, and upserts the record. Calling it again for the
	// same date with unchanged history yields an identical record.
	Calculate(ctx context.Context, date time.Time) (*IndexRecord, error)
}

var (
	// ErrNoData means no active material had any price at or before the
	// requested date.
	ErrNoData = errors.New("no_price_data")
)
