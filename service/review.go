package services

import (
	"encoding/json"
	"log"
	"math"
	"time"

	model "github.com/devraj13/ComplyTrack/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmitReview records a reviewer's verdict on a submitted execution. The
// GrcReview row is upserted on (tenant, execution), the workflow advances
// per the decision, and remediation follows: needs_changes/rejected fires a
// 7-day trigger, approval closes every open plan sourced from the execution.
func (s *GrcService) SubmitReview(tenant model.TenantContext, executionID, decisionRaw, comment string) (*model.GrcReview, error) {
	if comment == "" {
		return nil, validationf("a review comment is mandatory")
	}
	decision, err := model.ParseDecision(decisionRaw)
	if err != nil {
		return nil, validationf("%v", err)
	}

	exec, err := s.getExecution(tenant, executionID)
	if err != nil {
		return nil, err
	}

	var nextState model.WorkflowState
	switch decision {
	case model.DecisionApproved:
		nextState = model.WorkflowApproved
	case model.DecisionRejected:
		nextState = model.WorkflowRejected
	default:
		nextState = model.WorkflowNeedsChanges
	}
	next, err := transition(exec.WorkflowStatus, nextState)
	if err != nil {
		return nil, err
	}

	snapshot, _ := json.Marshal(map[string]interface{}{
		"auto_status":    exec.AutoStatus,
		"result_numeric": exec.ResultNumeric,
		"result_boolean": exec.ResultBoolean,
		"period":         exec.Period,
	})

	now := time.Now()
	review := model.GrcReview{
		TenantID:    tenant.TenantID,
		ExecutionID: exec.ID,
		Decision:    decision,
		Comment:     comment,
		ReviewerID:  tenant.UserID,
		Payload:     datatypes.JSON(snapshot),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "execution_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"decision", "comment", "reviewer_id", "payload", "updated_at"}),
	}).Create(&review).Error; err != nil {
		log.Printf("[SubmitReview] Error upserting review for execution %s: %v", exec.ID, err)
		return nil, err
	}

	updates := map[string]interface{}{
		"workflow_status": next,
		"updated_at":      now,
	}
	if next == model.WorkflowNeedsChanges || next == model.WorkflowRejected {
		due := now.AddDate(0, 0, ReviewDueDaysOnRework)
		updates["review_due_date"] = &due
	}
	if err := s.db.Model(exec).Updates(updates).Error; err != nil {
		log.Printf("[SubmitReview] Error advancing execution %s to %s: %v", exec.ID, next, err)
		return nil, err
	}
	exec.WorkflowStatus = next
	log.Printf("[SubmitReview] Execution %s reviewed: decision=%s state=%s", exec.ID, decision, next)

	switch decision {
	case model.DecisionNeedsChanges, model.DecisionRejected:
		outcome, err := s.EnsureActionPlanForExecution(tenant, exec.ID, model.TriggerGrcReview, comment, ReviewDueDaysOnRework)
		if err != nil {
			return nil, err
		}
		log.Printf("[SubmitReview] Remediation trigger for execution %s: created=%v reason=%s", exec.ID, outcome.Created, outcome.Reason)
	case model.DecisionApproved:
		if err := s.closeExecutionPlans(tenant, exec.ID); err != nil {
			return nil, err
		}
	}

	return &review, nil
}

// closeExecutionPlans marks every open plan sourced from the execution as
// done. Plans from other origins are untouched.
func (s *GrcService) closeExecutionPlans(tenant model.TenantContext, executionID string) error {
	res := s.db.Model(&model.ActionPlan{}).
		Where("tenant_id = ? AND execution_id = ?", tenant.TenantID, executionID).
		Where("status <> ?", model.PlanDone).
		Updates(map[string]interface{}{
			"status":     model.PlanDone,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		log.Printf("[closeExecutionPlans] Error closing plans for execution %s: %v", executionID, res.Error)
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[closeExecutionPlans] Closed %d plan(s) for execution %s", res.RowsAffected, executionID)
	}
	return nil
}

// ReviewPreview is what the finalize-review screen renders before the
// reviewer commits: the recomputed status and the suggested decision.
type ReviewPreview struct {
	AutoStatus        model.Status   `json:"auto_status"`
	SuggestedDecision model.Decision `json:"suggested_decision"`
}

// PreviewReviewDecision recomputes the auto-status, optionally against an
// overridden numeric result, and derives the decision the UI pre-selects.
// Nothing is persisted; only FinalizeReview writes.
func (s *GrcService) PreviewReviewDecision(tenant model.TenantContext, executionID string, overrideNumeric *float64) (*ReviewPreview, error) {
	exec, err := s.getExecution(tenant, executionID)
	if err != nil {
		return nil, err
	}
	kpi, err := s.getKpi(tenant, exec.KpiID)
	if err != nil {
		return nil, err
	}
	if overrideNumeric != nil {
		exec.ResultNumeric = overrideNumeric
	}
	status := EvaluateStatus(*kpi, *exec, math.NaN())
	return &ReviewPreview{
		AutoStatus:        status,
		SuggestedDecision: AutomaticDecision(status),
	}, nil
}

// FinalizeReview lets the reviewer override the numeric result before the
// decision is recorded. The override is saved and auto_status recomputed
// first; the explicit decision then goes through SubmitReview unchanged —
// the suggested decision is advisory only.
func (s *GrcService) FinalizeReview(tenant model.TenantContext, executionID string, overrideNumeric *float64, decisionRaw, comment string) (*model.GrcReview, error) {
	if overrideNumeric != nil {
		if _, err := s.SaveExecutionResult(tenant, executionID, overrideNumeric, nil, nil); err != nil {
			return nil, err
		}
	}
	return s.SubmitReview(tenant, executionID, decisionRaw, comment)
}

// GetReview fetches the review row for an execution, if any.
func (s *GrcService) GetReview(tenant model.TenantContext, executionID string) (*model.GrcReview, error) {
	var review model.GrcReview
	err := s.db.Where("execution_id = ? AND tenant_id = ?", executionID, tenant.TenantID).First(&review).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFoundf("review for execution %s", executionID)
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}
