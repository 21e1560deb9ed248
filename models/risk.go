package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Risk carries the live impact/likelihood values; every new assessment
// overwrites them and appends a RiskAssessment history row.
type Risk struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID string `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`

	// Impact and Likelihood are clamped integers in [1,5].
	Impact     int `gorm:"not null;default:1" json:"impact"`
	Likelihood int `gorm:"not null;default:1" json:"likelihood"`

	// RiskScore = Impact * Likelihood, range 1..25.
	RiskScore      int            `gorm:"not null;default:1" json:"risk_score"`
	Classification Classification `gorm:"not null;default:low" json:"classification"`

	OwnerID   string    `gorm:"type:uuid" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Risk) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RiskAssessment is an append-only history row. Rows are never updated or
// deleted; the risk's live fields are the projection of the latest row.
type RiskAssessment struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID string `gorm:"type:uuid;not null;index" json:"tenant_id"`
	RiskID   string `gorm:"type:uuid;not null;index" json:"risk_id"`

	Impact         int            `gorm:"not null" json:"impact"`
	Likelihood     int            `gorm:"not null" json:"likelihood"`
	RiskScore      int            `gorm:"not null" json:"risk_score"`
	Classification Classification `gorm:"not null" json:"classification"`

	// Context holds free-form assessor notes and methodology fields.
	Context datatypes.JSON `json:"context"`

	AssessedBy string    `gorm:"type:uuid" json:"assessed_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *RiskAssessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
