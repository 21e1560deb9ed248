package services

import (
	"log"
	"math"
	"time"

	model "github.com/devraj13/ComplyTrack/models"
)

// Review/remediation due-date policy, in days.
const (
	ReviewDueDaysOnSubmit = 5
	ReviewDueDaysOnRework = 7
	DefaultPlanDueDays    = 14
)

// workflowTransitions is the complete edge set of the execution lifecycle.
// Every workflow_status change in the service goes through transition();
// there are no ad hoc status writes elsewhere.
var workflowTransitions = map[model.WorkflowState][]model.WorkflowState{
	model.WorkflowDraft:        {model.WorkflowSubmitted},
	model.WorkflowSubmitted:    {model.WorkflowUnderReview, model.WorkflowNeedsChanges, model.WorkflowApproved, model.WorkflowRejected},
	model.WorkflowUnderReview:  {model.WorkflowNeedsChanges, model.WorkflowApproved, model.WorkflowRejected},
	model.WorkflowNeedsChanges: {model.WorkflowSubmitted},
	model.WorkflowApproved:     {},
	model.WorkflowRejected:     {},
}

// transition validates a single workflow edge and returns the new state.
func transition(current, next model.WorkflowState) (model.WorkflowState, error) {
	if current.IsTerminal() {
		return "", invalidTransitionf("execution is %s and cannot change state", current)
	}
	for _, allowed := range workflowTransitions[current] {
		if allowed == next {
			return next, nil
		}
	}
	return "", invalidTransitionf("cannot move execution from %s to %s", current, next)
}

// CreateExecution opens a measurement row for a (KPI, period) and applies the
// initial result via the same evaluation path as later saves.
func (s *GrcService) CreateExecution(tenant model.TenantContext, kpiID, period string, numeric *float64, boolean *bool, notes string) (*model.Execution, error) {
	if period == "" {
		return nil, validationf("period is required")
	}
	kpi, err := s.getKpi(tenant, kpiID)
	if err != nil {
		return nil, err
	}

	exec := model.Execution{
		TenantID:       tenant.TenantID,
		KpiID:          kpi.ID,
		Period:         period,
		ResultNumeric:  numeric,
		ResultBoolean:  boolean,
		ResultNotes:    notes,
		WorkflowStatus: model.WorkflowDraft,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	exec.AutoStatus = EvaluateStatus(*kpi, exec, math.NaN())

	if err := s.db.Create(&exec).Error; err != nil {
		log.Printf("[CreateExecution] Error creating execution for kpi %s: %v", kpiID, err)
		return nil, err
	}
	log.Printf("[CreateExecution] Execution %s created for kpi %s period %s (auto_status=%s)", exec.ID, kpi.Code, period, exec.AutoStatus)
	return &exec, nil
}

// SaveExecutionResult updates result fields and recomputes auto_status. It is
// allowed in any pre-terminal state and never moves workflow_status.
func (s *GrcService) SaveExecutionResult(tenant model.TenantContext, executionID string, numeric *float64, boolean *bool, notes *string) (*model.Execution, error) {
	exec, err := s.getExecution(tenant, executionID)
	if err != nil {
		return nil, err
	}
	if exec.WorkflowStatus.IsTerminal() {
		return nil, invalidTransitionf("execution %s is %s; results are frozen", exec.ID, exec.WorkflowStatus)
	}
	kpi, err := s.getKpi(tenant, exec.KpiID)
	if err != nil {
		return nil, err
	}

	if numeric != nil && (math.IsNaN(*numeric) || math.IsInf(*numeric, 0)) {
		return nil, validationf("result_numeric must be a finite number")
	}

	if numeric != nil {
		exec.ResultNumeric = numeric
	}
	if boolean != nil {
		exec.ResultBoolean = boolean
	}
	if notes != nil {
		exec.ResultNotes = *notes
	}
	exec.AutoStatus = EvaluateStatus(*kpi, *exec, math.NaN())
	exec.UpdatedAt = time.Now()

	if err := s.db.Model(exec).Updates(map[string]interface{}{
		"result_numeric": exec.ResultNumeric,
		"result_boolean": exec.ResultBoolean,
		"result_notes":   exec.ResultNotes,
		"auto_status":    exec.AutoStatus,
		"updated_at":     exec.UpdatedAt,
	}).Error; err != nil {
		log.Printf("[SaveExecutionResult] Error updating execution %s: %v", exec.ID, err)
		return nil, err
	}
	log.Printf("[SaveExecutionResult] Execution %s result saved (auto_status=%s)", exec.ID, exec.AutoStatus)
	return exec, nil
}

// SubmitExecution moves a draft or reworked execution into review. It guards
// terminal states, enforces the evidence gate, recomputes auto_status from
// the current result, stamps the review due date and fires the remediation
// trigger for off-target results.
func (s *GrcService) SubmitExecution(tenant model.TenantContext, executionID string) (*model.Execution, error) {
	exec, err := s.getExecution(tenant, executionID)
	if err != nil {
		return nil, err
	}
	kpi, err := s.getKpi(tenant, exec.KpiID)
	if err != nil {
		return nil, err
	}

	next, err := transition(exec.WorkflowStatus, model.WorkflowSubmitted)
	if err != nil {
		return nil, err
	}

	if kpi.EvidenceRequired {
		var count int64
		if err := s.db.Model(&model.Evidence{}).
			Where("execution_id = ? AND tenant_id = ?", exec.ID, tenant.TenantID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, validationf("kpi %s requires evidence before submission", kpi.Code)
		}
	}

	now := time.Now()
	due := now.AddDate(0, 0, ReviewDueDaysOnSubmit)
	exec.AutoStatus = EvaluateStatus(*kpi, *exec, math.NaN())
	exec.WorkflowStatus = next
	exec.SubmittedAt = &now
	exec.ReviewDueDate = &due
	exec.UpdatedAt = now

	if err := s.db.Model(exec).Updates(map[string]interface{}{
		"auto_status":     exec.AutoStatus,
		"workflow_status": exec.WorkflowStatus,
		"submitted_at":    exec.SubmittedAt,
		"review_due_date": exec.ReviewDueDate,
		"updated_at":      exec.UpdatedAt,
	}).Error; err != nil {
		log.Printf("[SubmitExecution] Error submitting execution %s: %v", exec.ID, err)
		return nil, err
	}
	log.Printf("[SubmitExecution] Execution %s submitted (auto_status=%s, review due %s)", exec.ID, exec.AutoStatus, due.Format("2006-01-02"))

	outcome, err := s.EnsureActionPlanForExecution(tenant, exec.ID, model.TriggerAutoStatus,
		"Submitted result is off target", DefaultPlanDueDays)
	if err != nil {
		return nil, err
	}
	log.Printf("[SubmitExecution] Remediation trigger for execution %s: created=%v reason=%s", exec.ID, outcome.Created, outcome.Reason)

	return exec, nil
}

// StartReview moves a submitted execution to under_review when a reviewer
// opens it.
func (s *GrcService) StartReview(tenant model.TenantContext, executionID string) (*model.Execution, error) {
	exec, err := s.getExecution(tenant, executionID)
	if err != nil {
		return nil, err
	}
	next, err := transition(exec.WorkflowStatus, model.WorkflowUnderReview)
	if err != nil {
		return nil, err
	}
	exec.WorkflowStatus = next
	exec.UpdatedAt = time.Now()
	if err := s.db.Model(exec).Updates(map[string]interface{}{
		"workflow_status": exec.WorkflowStatus,
		"updated_at":      exec.UpdatedAt,
	}).Error; err != nil {
		return nil, err
	}
	return exec, nil
}

// ListExecutionEvidence returns the evidence rows backing an execution.
func (s *GrcService) ListExecutionEvidence(tenant model.TenantContext, executionID string) ([]model.Evidence, error) {
	if _, err := s.getExecution(tenant, executionID); err != nil {
		return nil, err
	}
	var rows []model.Evidence
	if err := s.db.Where("execution_id = ? AND tenant_id = ?", executionID, tenant.TenantID).
		Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AttachEvidence records an evidence pointer for an execution. The file
// itself lives in external storage; only the row matters for the gate.
func (s *GrcService) AttachEvidence(tenant model.TenantContext, executionID, fileName, fileURL string) (*model.Evidence, error) {
	exec, err := s.getExecution(tenant, executionID)
	if err != nil {
		return nil, err
	}
	if exec.WorkflowStatus.IsTerminal() {
		return nil, invalidTransitionf("execution %s is %s; evidence is frozen", exec.ID, exec.WorkflowStatus)
	}
	if fileName == "" {
		return nil, validationf("file_name is required")
	}
	ev := model.Evidence{
		TenantID:    tenant.TenantID,
		ExecutionID: exec.ID,
		FileName:    fileName,
		FileURL:     fileURL,
		UploadedBy:  tenant.UserID,
		CreatedAt:   time.Now(),
	}
	if err := s.db.Create(&ev).Error; err != nil {
		log.Printf("[AttachEvidence] Error creating evidence for execution %s: %v", exec.ID, err)
		return nil, err
	}
	return &ev, nil
}
