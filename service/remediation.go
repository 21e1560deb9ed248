package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	model "github.com/devraj13/ComplyTrack/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// TriggerOutcome reports what a remediation trigger did.
type TriggerOutcome struct {
	Created bool   `json:"created"`
	Reason  string `json:"reason"`
	PlanID  string `json:"plan_id,omitempty"`
}

// Trigger outcome reasons.
const (
	ReasonCreated        = "created"
	ReasonAlreadyOpen    = "already_open"
	ReasonBelowThreshold = "classification_below_threshold"
	ReasonWithinTarget   = "status_within_target"
)

// EnsureActionPlanForRisk opens a remediation plan for a high or critical
// risk unless one is already open for it. A later downgrade of the risk
// never closes the plan automatically.
//
// The open-plan check and the insert run inside one transaction, and the
// partial unique index uniq_open_plan_risk backstops the race two concurrent
// triggers would otherwise win together; a unique violation is reported as
// already_open, not an error.
func (s *GrcService) EnsureActionPlanForRisk(tenant model.TenantContext, riskID string, dueInDays int) (TriggerOutcome, error) {
	risk, err := s.getRisk(tenant, riskID)
	if err != nil {
		return TriggerOutcome{}, err
	}

	if risk.Classification != model.ClassificationHigh && risk.Classification != model.ClassificationCritical {
		return TriggerOutcome{Created: false, Reason: ReasonBelowThreshold}, nil
	}

	if dueInDays <= 0 {
		dueInDays = DefaultPlanDueDays
	}
	priority := model.PriorityHigh
	if risk.Classification == model.ClassificationCritical {
		priority = model.PriorityCritical
	}

	plan := model.ActionPlan{
		TenantID:    tenant.TenantID,
		RiskID:      &risk.ID,
		Title:       fmt.Sprintf("Mitigate risk: %s", risk.Title),
		Description: fmt.Sprintf("Risk %s scored %d (%s); remediation required.", risk.Title, risk.RiskScore, risk.Classification),
		Status:      model.PlanNotStarted,
		Priority:    priority,
		DueDate:     time.Now().AddDate(0, 0, dueInDays),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	return s.insertPlanIfAbsent(plan, "risk_id = ?", risk.ID)
}

// EnsureActionPlanForExecution opens a remediation plan for a failing
// execution. A grc_review trigger always qualifies; an auto_status trigger
// only fires for warning or out_of_target results.
func (s *GrcService) EnsureActionPlanForExecution(tenant model.TenantContext, executionID string, trigger model.PlanTrigger, reason string, dueInDays int) (TriggerOutcome, error) {
	exec, err := s.getExecution(tenant, executionID)
	if err != nil {
		return TriggerOutcome{}, err
	}
	kpi, err := s.getKpi(tenant, exec.KpiID)
	if err != nil {
		return TriggerOutcome{}, err
	}

	offTarget := exec.AutoStatus == model.StatusOutOfTarget || exec.AutoStatus == model.StatusWarning
	if trigger != model.TriggerGrcReview && !offTarget {
		return TriggerOutcome{Created: false, Reason: ReasonWithinTarget}, nil
	}

	if dueInDays <= 0 {
		dueInDays = DefaultPlanDueDays
	}
	priority := model.PriorityMedium
	if exec.AutoStatus == model.StatusOutOfTarget {
		priority = model.PriorityHigh
	}

	plan := model.ActionPlan{
		TenantID:    tenant.TenantID,
		ExecutionID: &exec.ID,
		KpiID:       &kpi.ID,
		Title:       fmt.Sprintf("Address %s non-compliance (%s)", kpi.Code, exec.Period),
		Description: fmt.Sprintf("KPI %s is %s for period %s: %s", kpi.Code, exec.AutoStatus, exec.Period, reason),
		Status:      model.PlanNotStarted,
		Priority:    priority,
		Trigger:     trigger,
		DueDate:     time.Now().AddDate(0, 0, dueInDays),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if kpi.ControlID != "" {
		controlID := kpi.ControlID
		plan.ControlID = &controlID
	}

	return s.insertPlanIfAbsent(plan, "execution_id = ?", exec.ID)
}

// insertPlanIfAbsent is the shared invariant-enforcing shape: inside one
// transaction, bail out if an open plan exists for the origin, otherwise
// insert. The store-level partial unique index turns a lost race into a
// unique violation, which is mapped back to already_open.
func (s *GrcService) insertPlanIfAbsent(plan model.ActionPlan, originQuery string, originID string) (TriggerOutcome, error) {
	var outcome TriggerOutcome

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&model.ActionPlan{}).
			Where("tenant_id = ?", plan.TenantID).
			Where(originQuery, originID).
			Where("status <> ?", model.PlanDone).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			outcome = TriggerOutcome{Created: false, Reason: ReasonAlreadyOpen}
			return nil
		}
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		outcome = TriggerOutcome{Created: true, Reason: ReasonCreated, PlanID: plan.ID}
		return nil
	})

	if err != nil {
		if isUniqueViolation(err) {
			log.Printf("[insertPlanIfAbsent] Concurrent trigger lost the race for origin %s: %v", originID, err)
			return TriggerOutcome{Created: false, Reason: ReasonAlreadyOpen}, nil
		}
		log.Printf("[insertPlanIfAbsent] Error ensuring plan for origin %s: %v", originID, err)
		return TriggerOutcome{}, err
	}

	if outcome.Created {
		log.Printf("[insertPlanIfAbsent] Action plan %s created for origin %s (priority=%s)", outcome.PlanID, originID, plan.Priority)
		s.indexActionPlan(plan)
	}
	return outcome, nil
}

// isUniqueViolation detects a unique-index conflict from either backend:
// postgres in production, sqlite in tests.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}
