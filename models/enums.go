package models

import (
	"fmt"
	"strings"
)

// Status is the auto-status derived from comparing a measured result to the
// configured target. It is independent of the human review lifecycle.
type Status string

const (
	StatusInTarget      Status = "in_target"
	StatusWarning       Status = "warning"
	StatusOutOfTarget   Status = "out_of_target"
	StatusUnknown       Status = "unknown"
	StatusNotApplicable Status = "not_applicable"
)

// Operator is the comparison direction for numeric KPI targets.
type Operator string

const (
	OperatorGte Operator = "gte"
	OperatorLte Operator = "lte"
	OperatorEq  Operator = "eq"
)

// operatorSynonyms maps the free-text operator tokens found in imported
// configurations onto the closed set. Matching is done once at the parse
// edge; business logic only ever sees Operator values.
var operatorSynonyms = map[string]Operator{
	"gte":              OperatorGte,
	">=":               OperatorGte,
	"≥":                OperatorGte,
	"higher_is_better": OperatorGte,
	"maior_melhor":     OperatorGte,
	"maior_igual":      OperatorGte,
	"min":              OperatorGte,
	"lte":              OperatorLte,
	"<=":               OperatorLte,
	"≤":                OperatorLte,
	"lower_is_better":  OperatorLte,
	"menor_melhor":     OperatorLte,
	"menor_igual":      OperatorLte,
	"max":              OperatorLte,
	"eq":               OperatorEq,
	"=":                OperatorEq,
	"==":               OperatorEq,
	"equal":            OperatorEq,
	"igual":            OperatorEq,
}

// ParseOperator normalizes a raw operator token. Unrecognized tokens default
// to gte, matching how legacy rows were interpreted.
func ParseOperator(raw string) Operator {
	token := strings.ToLower(strings.TrimSpace(raw))
	if op, ok := operatorSynonyms[token]; ok {
		return op
	}
	return OperatorGte
}

// KpiType distinguishes how a KPI's result is measured.
type KpiType string

const (
	KpiTypeNumber  KpiType = "number"
	KpiTypePercent KpiType = "percent"
	KpiTypeBoolean KpiType = "boolean"
)

// WorkflowState is an execution's position in its review lifecycle.
type WorkflowState string

const (
	WorkflowDraft        WorkflowState = "draft"
	WorkflowSubmitted    WorkflowState = "submitted"
	WorkflowUnderReview  WorkflowState = "under_review"
	WorkflowNeedsChanges WorkflowState = "needs_changes"
	WorkflowApproved     WorkflowState = "approved"
	WorkflowRejected     WorkflowState = "rejected"
)

// IsTerminal reports whether no further transitions are allowed.
func (s WorkflowState) IsTerminal() bool {
	return s == WorkflowApproved || s == WorkflowRejected
}

// Decision is a reviewer's verdict on a submitted execution.
type Decision string

const (
	DecisionApproved     Decision = "approved"
	DecisionNeedsChanges Decision = "needs_changes"
	DecisionRejected     Decision = "rejected"
)

// ParseDecision validates a raw decision token.
func ParseDecision(raw string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionApproved:
		return DecisionApproved, nil
	case DecisionNeedsChanges:
		return DecisionNeedsChanges, nil
	case DecisionRejected:
		return DecisionRejected, nil
	}
	return "", fmt.Errorf("invalid review decision %q", raw)
}

// Classification buckets a risk score into severity bands.
type Classification string

const (
	ClassificationLow      Classification = "low"
	ClassificationMedium   Classification = "medium"
	ClassificationHigh     Classification = "high"
	ClassificationCritical Classification = "critical"
)

// PlanStatus is an action plan's lifecycle state. Anything other than done
// counts as open for the single-open-plan invariant.
type PlanStatus string

const (
	PlanNotStarted PlanStatus = "not_started"
	PlanInProgress PlanStatus = "in_progress"
	PlanBlocked    PlanStatus = "blocked"
	PlanDone       PlanStatus = "done"
)

// ParsePlanStatus validates a raw plan status token.
func ParsePlanStatus(raw string) (PlanStatus, error) {
	switch PlanStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case PlanNotStarted:
		return PlanNotStarted, nil
	case PlanInProgress:
		return PlanInProgress, nil
	case PlanBlocked:
		return PlanBlocked, nil
	case PlanDone:
		return PlanDone, nil
	}
	return "", fmt.Errorf("invalid plan status %q", raw)
}

// Priority orders action plans for remediation work queues.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// PlanTrigger records which event caused an execution-sourced plan.
type PlanTrigger string

const (
	TriggerAutoStatus PlanTrigger = "auto_status"
	TriggerGrcReview  PlanTrigger = "grc_review"
)
