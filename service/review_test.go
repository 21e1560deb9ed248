package services

import (
	"errors"
	"testing"
	"time"

	model "github.com/devraj13/ComplyTrack/models"

	"github.com/agiledragon/gomonkey/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submittedExecution(t *testing.T, svc *GrcService, tenant model.TenantContext, result float64) *model.Execution {
	t.Helper()
	kpi := mustKpi(t, svc, tenant, nil)
	exec := mustExecution(t, svc, tenant, kpi, floatPtr(result))
	submitted, err := svc.SubmitExecution(tenant, exec.ID)
	require.NoError(t, err)
	return submitted
}

func TestSubmitReview_ApprovalClosesExecutionPlans(t *testing.T) {
	svc, tenant := newTestService(t)
	exec := submittedExecution(t, svc, tenant, 50) // off target: submission opened a plan
	require.EqualValues(t, 1, openPlanCount(t, svc, tenant))

	// A plan from another origin must survive the approval untouched.
	risk := mustRisk(t, svc, tenant, 4, 4)
	riskOutcome, err := svc.EnsureActionPlanForRisk(tenant, risk.ID, 0)
	require.NoError(t, err)

	_, err = svc.SubmitReview(tenant, exec.ID, "approved", "Accepted with compensating control")
	require.NoError(t, err)

	var execPlan model.ActionPlan
	require.NoError(t, svc.db.First(&execPlan, "execution_id = ?", exec.ID).Error)
	assert.Equal(t, model.PlanDone, execPlan.Status)

	var riskPlan model.ActionPlan
	require.NoError(t, svc.db.First(&riskPlan, "id = ?", riskOutcome.PlanID).Error)
	assert.NotEqual(t, model.PlanDone, riskPlan.Status)

	var after model.Execution
	require.NoError(t, svc.db.First(&after, "id = ?", exec.ID).Error)
	assert.Equal(t, model.WorkflowApproved, after.WorkflowStatus)
}

func TestSubmitReview_NeedsChangesOpensPlan(t *testing.T) {
	patches := gomonkey.ApplyFunc(time.Now, func() time.Time {
		return FixedTime
	})
	defer patches.Reset()

	svc, tenant := newTestService(t)
	exec := submittedExecution(t, svc, tenant, 100) // in target: no plan yet
	require.EqualValues(t, 0, openPlanCount(t, svc, tenant))

	_, err := svc.SubmitReview(tenant, exec.ID, "needs_changes", "Attach the raw export")
	require.NoError(t, err)

	var plan model.ActionPlan
	require.NoError(t, svc.db.First(&plan, "execution_id = ?", exec.ID).Error)
	assert.Equal(t, model.TriggerGrcReview, plan.Trigger)
	assert.Equal(t, FixedTime.AddDate(0, 0, ReviewDueDaysOnRework), plan.DueDate)

	var after model.Execution
	require.NoError(t, svc.db.First(&after, "id = ?", exec.ID).Error)
	assert.Equal(t, model.WorkflowNeedsChanges, after.WorkflowStatus)
	require.NotNil(t, after.ReviewDueDate)
	assert.Equal(t, FixedTime.AddDate(0, 0, ReviewDueDaysOnRework), *after.ReviewDueDate)
}

func TestSubmitReview_RejectionOpensPlan(t *testing.T) {
	svc, tenant := newTestService(t)
	exec := submittedExecution(t, svc, tenant, 100)

	_, err := svc.SubmitReview(tenant, exec.ID, "rejected", "Numbers do not reconcile")
	require.NoError(t, err)

	require.EqualValues(t, 1, openPlanCount(t, svc, tenant))
	var after model.Execution
	require.NoError(t, svc.db.First(&after, "id = ?", exec.ID).Error)
	assert.Equal(t, model.WorkflowRejected, after.WorkflowStatus)
}

func TestSubmitReview_UpsertOverwritesPriorDecision(t *testing.T) {
	svc, tenant := newTestService(t)
	exec := submittedExecution(t, svc, tenant, 100)

	_, err := svc.SubmitReview(tenant, exec.ID, "needs_changes", "first pass")
	require.NoError(t, err)

	// Resubmit, then review again: same row, new decision.
	_, err = svc.SubmitExecution(tenant, exec.ID)
	require.NoError(t, err)
	_, err = svc.SubmitReview(tenant, exec.ID, "approved", "fixed on second pass")
	require.NoError(t, err)

	var count int64
	require.NoError(t, svc.db.Model(&model.GrcReview{}).
		Where("execution_id = ?", exec.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "reviews upsert on (tenant, execution)")

	review, err := svc.GetReview(tenant, exec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DecisionApproved, review.Decision)
	assert.Equal(t, "fixed on second pass", review.Comment)
}

func TestSubmitReview_Validation(t *testing.T) {
	svc, tenant := newTestService(t)
	exec := submittedExecution(t, svc, tenant, 100)

	_, err := svc.SubmitReview(tenant, exec.ID, "approved", "")
	assert.True(t, errors.Is(err, ErrValidation), "comment is mandatory")

	_, err = svc.SubmitReview(tenant, exec.ID, "maybe", "hmm")
	assert.True(t, errors.Is(err, ErrValidation), "decision must be a known enum value")

	other := model.TenantContext{TenantID: "22222222-2222-2222-2222-222222222222"}
	_, err = svc.SubmitReview(other, exec.ID, "approved", "ok")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSubmitReview_TerminalExecutionRejectsFurtherReviews(t *testing.T) {
	svc, tenant := newTestService(t)
	exec := submittedExecution(t, svc, tenant, 100)

	_, err := svc.SubmitReview(tenant, exec.ID, "approved", "done")
	require.NoError(t, err)

	_, err = svc.SubmitReview(tenant, exec.ID, "rejected", "changed my mind")
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestPreviewReviewDecision_Override(t *testing.T) {
	svc, tenant := newTestService(t)
	exec := submittedExecution(t, svc, tenant, 100)

	preview, err := svc.PreviewReviewDecision(tenant, exec.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInTarget, preview.AutoStatus)
	assert.Equal(t, model.DecisionApproved, preview.SuggestedDecision)

	preview, err = svc.PreviewReviewDecision(tenant, exec.ID, floatPtr(50))
	require.NoError(t, err)
	assert.Equal(t, model.StatusOutOfTarget, preview.AutoStatus)
	assert.Equal(t, model.DecisionRejected, preview.SuggestedDecision)

	// Previews never persist.
	var after model.Execution
	require.NoError(t, svc.db.First(&after, "id = ?", exec.ID).Error)
	assert.Equal(t, model.StatusInTarget, after.AutoStatus)
}

func TestFinalizeReview_OverrideThenExplicitDecision(t *testing.T) {
	svc, tenant := newTestService(t)
	exec := submittedExecution(t, svc, tenant, 100)

	// The override recomputes auto_status, but the explicit decision wins:
	// the reviewer approves despite the suggested rejection.
	review, err := svc.FinalizeReview(tenant, exec.ID, floatPtr(50), "approved", "known outage, waived")
	require.NoError(t, err)
	assert.Equal(t, model.DecisionApproved, review.Decision)

	var after model.Execution
	require.NoError(t, svc.db.First(&after, "id = ?", exec.ID).Error)
	assert.Equal(t, model.StatusOutOfTarget, after.AutoStatus)
	require.NotNil(t, after.ResultNumeric)
	assert.Equal(t, 50.0, *after.ResultNumeric)
	assert.Equal(t, model.WorkflowApproved, after.WorkflowStatus)
}
