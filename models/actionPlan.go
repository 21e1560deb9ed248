package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActionPlan is a remediation task. Origin is exactly one of RiskID or
// ExecutionID (or neither, for manually raised plans). For a given origin at
// most one plan with status <> done may exist; the partial unique indexes
// uniq_open_plan_risk / uniq_open_plan_execution enforce that in the store.
type ActionPlan struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID string `gorm:"type:uuid;not null;index" json:"tenant_id"`

	RiskID      *string `gorm:"type:uuid;index" json:"risk_id"`
	ExecutionID *string `gorm:"type:uuid;index" json:"execution_id"`
	ControlID   *string `gorm:"type:uuid" json:"control_id"`
	KpiID       *string `gorm:"type:uuid" json:"kpi_id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`

	Status   PlanStatus `gorm:"not null;default:not_started" json:"status"`
	Priority Priority   `gorm:"not null;default:medium" json:"priority"`

	// Trigger records what opened an execution-sourced plan.
	Trigger PlanTrigger `json:"trigger"`

	AssignedTo string    `gorm:"type:uuid" json:"assigned_to"`
	DueDate    time.Time `json:"due_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (p *ActionPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
