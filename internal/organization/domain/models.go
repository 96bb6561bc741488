// Package domain contains persistence models for organizations and their
// plan-derived limits.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Plan is the subscription tier of an organization.
type Plan string

const (
	PlanTrial     Plan = "trial"
	PlanBasis     Plan = "basis"
	PlanPro       Plan = "pro"
	PlanTeam      Plan = "team"
	PlanCancelled Plan = "cancelled"
	PlanSuspended Plan = "suspended"
)

// Organization is a tenant. The price core only mutates plan and limit
// fields through the downgrade job; everything else is owned by the
// surrounding application.
type Organization struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name         string            `gorm:"type:text;not null" json:"name"`
	Plan         Plan              `gorm:"type:text;not null;index" json:"plan"`
	TrialEndsAt  *time.Time        `gorm:"column:trial_ends_at" json:"trial_ends_at,omitempty"`
	MaxMaterials int               `gorm:"not null;default:5" json:"max_materials"`
	MaxUsers     int               `gorm:"not null;default:1" json:"max_users"`
	MaxAlerts    int               `gorm:"not null;default:3" json:"max_alerts"`
	Features     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"features"`
	IsActive     bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// SelectedMaterial is one entry of an organization's watched-material list.
// Position preserves the original selection order.
type SelectedMaterial struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_material,priority:1" json:"org_id"`
	MaterialID snowflake.ID `gorm:"not null;uniqueIndex:ux_org_material,priority:2" json:"material_id"`
	Position   int          `gorm:"not null" json:"position"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (SelectedMaterial) TableName() string { return "organization_materials" }

// AlertRule notifies an organization when a material price crosses a
// threshold. Excess rules are deactivated on downgrade, never deleted.
type AlertRule struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID    `gorm:"not null;index" json:"org_id"`
	MaterialID   snowflake.ID    `gorm:"not null" json:"material_id"`
	ThresholdEUR decimal.Decimal `gorm:"type:numeric;not null;column:threshold_eur" json:"threshold_eur"`
	Direction    string          `gorm:"type:text;not null" json:"direction"`
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (AlertRule) TableName() string { return "alert_rules" }

// Limits are the plan-derived quota fields.
type Limits struct {
	MaxMaterials int
	MaxUsers     int
	MaxAlerts    int
	Features     map[string]any
}

// PlanLimits is the fixed plan → quota table. Trial runs with pro-equivalent
// limits until it expires.
var PlanLimits = map[Plan]Limits{
	PlanTrial: {MaxMaterials: 20, MaxUsers: 5, MaxAlerts: 20, Features: map[string]any{"export": true, "api_access": true}},
	PlanBasis: {MaxMaterials: 5, MaxUsers: 1, MaxAlerts: 3, Features: map[string]any{"export": false, "api_access": false}},
	PlanPro:   {MaxMaterials: 20, MaxUsers: 5, MaxAlerts: 20, Features: map[string]any{"export": true, "api_access": true}},
	PlanTeam:  {MaxMaterials: 50, MaxUsers: 25, MaxAlerts: 50, Features: map[string]any{"export": true, "api_access": true}},
}
