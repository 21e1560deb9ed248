package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GrcReview is the reviewer verdict on an execution. At most one row exists
// per (tenant, execution); a later review overwrites decision and comment.
type GrcReview struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    string `gorm:"type:uuid;not null;uniqueIndex:uniq_review_execution" json:"tenant_id"`
	ExecutionID string `gorm:"type:uuid;not null;uniqueIndex:uniq_review_execution" json:"execution_id"`

	Decision Decision `gorm:"not null" json:"decision"`
	Comment  string   `gorm:"not null" json:"comment"`

	// ReviewerID is the user who recorded the decision.
	ReviewerID string `gorm:"type:uuid" json:"reviewer_id"`

	// Payload snapshots the execution's result and auto-status at decision
	// time, for audit trails.
	Payload datatypes.JSON `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *GrcReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
