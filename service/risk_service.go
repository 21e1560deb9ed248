package services

import (
	"encoding/json"
	"log"
	"time"

	model "github.com/devraj13/ComplyTrack/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateRisk registers a risk with an initial assessment baked in.
func (s *GrcService) CreateRisk(tenant model.TenantContext, title, description string, impact, likelihood float64) (*model.Risk, error) {
	if title == "" {
		return nil, validationf("risk title is required")
	}
	score := ScoreRisk(impact, likelihood)
	risk := model.Risk{
		TenantID:       tenant.TenantID,
		Title:          title,
		Description:    description,
		Impact:         score.Impact,
		Likelihood:     score.Likelihood,
		RiskScore:      score.Score,
		Classification: score.Classification,
		OwnerID:        tenant.UserID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := s.db.Create(&risk).Error; err != nil {
		log.Printf("[CreateRisk] Error creating risk: %v", err)
		return nil, err
	}
	log.Printf("[CreateRisk] Risk %s created (score=%d, classification=%s)", risk.ID, risk.RiskScore, risk.Classification)
	return &risk, nil
}

// RecordRiskAssessment appends an immutable history row, overwrites the
// risk's live scoring fields, and fires the remediation trigger. A downgrade
// leaves any open plan untouched; closure is always a human call.
func (s *GrcService) RecordRiskAssessment(tenant model.TenantContext, riskID string, impact, likelihood float64, context map[string]interface{}) (*model.RiskAssessment, TriggerOutcome, error) {
	risk, err := s.getRisk(tenant, riskID)
	if err != nil {
		return nil, TriggerOutcome{}, err
	}

	score := ScoreRisk(impact, likelihood)

	var contextJSON datatypes.JSON
	if context != nil {
		raw, err := json.Marshal(context)
		if err != nil {
			return nil, TriggerOutcome{}, validationf("assessment context is not serializable: %v", err)
		}
		contextJSON = datatypes.JSON(raw)
	}

	assessment := model.RiskAssessment{
		TenantID:       tenant.TenantID,
		RiskID:         risk.ID,
		Impact:         score.Impact,
		Likelihood:     score.Likelihood,
		RiskScore:      score.Score,
		Classification: score.Classification,
		Context:        contextJSON,
		AssessedBy:     tenant.UserID,
		CreatedAt:      time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assessment).Error; err != nil {
			return err
		}
		return tx.Model(risk).Updates(map[string]interface{}{
			"impact":         score.Impact,
			"likelihood":     score.Likelihood,
			"risk_score":     score.Score,
			"classification": score.Classification,
			"updated_at":     time.Now(),
		}).Error
	})
	if err != nil {
		log.Printf("[RecordRiskAssessment] Error persisting assessment for risk %s: %v", riskID, err)
		return nil, TriggerOutcome{}, err
	}
	log.Printf("[RecordRiskAssessment] Risk %s reassessed: score=%d classification=%s", risk.ID, score.Score, score.Classification)

	outcome, err := s.EnsureActionPlanForRisk(tenant, risk.ID, DefaultPlanDueDays)
	if err != nil {
		return nil, TriggerOutcome{}, err
	}
	return &assessment, outcome, nil
}

// GetRisk returns a tenant-scoped risk.
func (s *GrcService) GetRisk(tenant model.TenantContext, riskID string) (*model.Risk, error) {
	return s.getRisk(tenant, riskID)
}

// ListRiskAssessments returns the append-only history for a risk, newest
// first.
func (s *GrcService) ListRiskAssessments(tenant model.TenantContext, riskID string) ([]model.RiskAssessment, error) {
	if _, err := s.getRisk(tenant, riskID); err != nil {
		return nil, err
	}
	var rows []model.RiskAssessment
	if err := s.db.Where("risk_id = ? AND tenant_id = ?", riskID, tenant.TenantID).
		Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
