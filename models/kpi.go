package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kpi is a key performance indicator tied to a control. Its target
// configuration drives the auto-status evaluation of every execution.
type Kpi struct {
	// ID is a unique identifier for the KPI, stored as a UUID.
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// TenantID scopes the KPI; every lookup must filter on it.
	TenantID string `gorm:"type:uuid;not null;index" json:"tenant_id"`

	// ControlID references the control this KPI measures.
	ControlID string `gorm:"type:uuid;index" json:"control_id"`

	// Code is the short human-readable identifier shown on plans ("KPI-042").
	Code string `gorm:"not null" json:"code"`

	Name        string `json:"name"`
	Description string `json:"description"`

	// KpiType is one of number, percent, boolean.
	KpiType KpiType `gorm:"not null;default:number" json:"kpi_type"`

	// TargetOperator is the normalized comparison direction. Boolean KPIs
	// ignore it and compare equality against TargetBoolean.
	TargetOperator Operator `gorm:"not null;default:gte" json:"target_operator"`

	// TargetValue and TargetBoolean are both nullable; a KPI with neither
	// set evaluates to not_applicable.
	TargetValue   *float64 `json:"target_value"`
	TargetBoolean *bool    `json:"target_boolean"`

	// WarningBufferPct is the tolerance band around the target, 0..0.5.
	WarningBufferPct float64 `gorm:"default:0.05" json:"warning_buffer_pct"`

	// EvidenceRequired gates submission on at least one evidence row.
	EvidenceRequired bool `gorm:"default:false" json:"evidence_required"`

	// IsActive false means the target is ignored entirely.
	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an application-side UUID so the model is portable
// across postgres and the sqlite test database.
func (k *Kpi) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}
