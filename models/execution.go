package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Execution is one measured period for a KPI. AutoStatus is derived and
// persisted on every result save; WorkflowStatus only moves through the
// workflow transition table.
type Execution struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID string `gorm:"type:uuid;not null;index" json:"tenant_id"`
	KpiID    string `gorm:"type:uuid;not null;index" json:"kpi_id"`

	// Period identifies the measurement window, e.g. "2026-Q1" or "2026-07".
	Period string `gorm:"not null" json:"period"`

	ResultNumeric *float64 `json:"result_numeric"`
	ResultBoolean *bool    `json:"result_boolean"`
	ResultNotes   string   `json:"result_notes"`

	AutoStatus     Status        `gorm:"not null;default:unknown" json:"auto_status"`
	WorkflowStatus WorkflowState `gorm:"not null;default:draft" json:"workflow_status"`

	SubmittedAt   *time.Time `json:"submitted_at"`
	ReviewDueDate *time.Time `json:"review_due_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Execution) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Evidence is a pointer to an uploaded artifact backing an execution.
// Storage mechanics live outside this service; only row existence matters
// for the evidence gate.
type Evidence struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    string    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ExecutionID string    `gorm:"type:uuid;not null;index" json:"execution_id"`
	FileName    string    `json:"file_name"`
	FileURL     string    `json:"file_url"`
	UploadedBy  string    `gorm:"type:uuid" json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ev *Evidence) BeforeCreate(tx *gorm.DB) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	return nil
}
