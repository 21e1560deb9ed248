package services

import (
	"math"
	"testing"

	model "github.com/devraj13/ComplyTrack/models"

	"github.com/stretchr/testify/assert"
)

func numericKpi(op model.Operator, target, buffer float64) model.Kpi {
	return model.Kpi{
		KpiType:          model.KpiTypePercent,
		TargetOperator:   op,
		TargetValue:      &target,
		WarningBufferPct: buffer,
		IsActive:         true,
	}
}

func TestEvaluateStatus_GteBands(t *testing.T) {
	kpi := numericKpi(model.OperatorGte, 100, 0.05)

	tests := []struct {
		name  string
		value float64
		want  model.Status
	}{
		{"on target", 100, model.StatusInTarget},
		{"above target", 104, model.StatusInTarget},
		{"inside warning floor", 96, model.StatusWarning},
		{"exactly the floor", 95, model.StatusWarning},
		{"below the floor", 90, model.StatusOutOfTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := model.Execution{ResultNumeric: &tt.value}
			assert.Equal(t, tt.want, EvaluateStatus(kpi, exec, math.NaN()))
		})
	}
}

func TestEvaluateStatus_LteBands(t *testing.T) {
	// The warning ceiling is a percentage of the target, not an absolute
	// buffer value: target 5 with a 10% buffer tolerates up to 5.5.
	kpi := numericKpi(model.OperatorLte, 5, 0.1)

	tests := []struct {
		name  string
		value float64
		want  model.Status
	}{
		{"on target", 5, model.StatusInTarget},
		{"below target", 3, model.StatusInTarget},
		{"inside warning ceiling", 5.4, model.StatusWarning},
		{"exactly the ceiling", 5.5, model.StatusWarning},
		{"above the ceiling", 6, model.StatusOutOfTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := model.Execution{ResultNumeric: &tt.value}
			assert.Equal(t, tt.want, EvaluateStatus(kpi, exec, math.NaN()))
		})
	}
}

func TestEvaluateStatus_EqHasNoWarningTier(t *testing.T) {
	kpi := numericKpi(model.OperatorEq, 10, 0.2)

	hit := 10.0
	near := 10.5
	assert.Equal(t, model.StatusInTarget, EvaluateStatus(kpi, model.Execution{ResultNumeric: &hit}, math.NaN()))
	assert.Equal(t, model.StatusOutOfTarget, EvaluateStatus(kpi, model.Execution{ResultNumeric: &near}, math.NaN()))
}

func TestEvaluateStatus_Boolean(t *testing.T) {
	yes := true
	kpi := model.Kpi{
		KpiType:       model.KpiTypeBoolean,
		TargetBoolean: &yes,
		IsActive:      true,
	}

	assert.Equal(t, model.StatusInTarget, EvaluateStatus(kpi, model.Execution{ResultBoolean: boolPtr(true)}, math.NaN()))
	assert.Equal(t, model.StatusOutOfTarget, EvaluateStatus(kpi, model.Execution{ResultBoolean: boolPtr(false)}, math.NaN()))
	assert.Equal(t, model.StatusUnknown, EvaluateStatus(kpi, model.Execution{}, math.NaN()))
}

func TestEvaluateStatus_BooleanNumericLegacyTarget(t *testing.T) {
	// Legacy rows carry the boolean target as a numeric >= 1.
	kpi := model.Kpi{
		KpiType:     model.KpiTypeBoolean,
		TargetValue: floatPtr(1),
		IsActive:    true,
	}
	assert.Equal(t, model.StatusInTarget, EvaluateStatus(kpi, model.Execution{ResultBoolean: boolPtr(true)}, math.NaN()))
	assert.Equal(t, model.StatusOutOfTarget, EvaluateStatus(kpi, model.Execution{ResultBoolean: boolPtr(false)}, math.NaN()))
}

func TestEvaluateStatus_NotApplicable(t *testing.T) {
	value := 50.0
	exec := model.Execution{ResultNumeric: &value}

	inactive := numericKpi(model.OperatorGte, 100, 0.05)
	inactive.IsActive = false
	assert.Equal(t, model.StatusNotApplicable, EvaluateStatus(inactive, exec, math.NaN()))

	targetless := model.Kpi{KpiType: model.KpiTypeNumber, TargetOperator: model.OperatorGte, IsActive: true}
	assert.Equal(t, model.StatusNotApplicable, EvaluateStatus(targetless, exec, math.NaN()))
}

func TestEvaluateStatus_MissingResultIsUnknown(t *testing.T) {
	kpi := numericKpi(model.OperatorGte, 100, 0.05)
	assert.Equal(t, model.StatusUnknown, EvaluateStatus(kpi, model.Execution{}, math.NaN()))
}

func TestEvaluateStatus_BufferResolution(t *testing.T) {
	kpi := numericKpi(model.OperatorGte, 100, 0.05)
	value := 92.0
	exec := model.Execution{ResultNumeric: &value}

	// Explicit override widens the band.
	assert.Equal(t, model.StatusWarning, EvaluateStatus(kpi, exec, 0.1))
	// KPI's own buffer applies when the override is NaN.
	assert.Equal(t, model.StatusOutOfTarget, EvaluateStatus(kpi, exec, math.NaN()))
	// Buffers clamp to [0, 0.5]: an absurd override behaves like 0.5.
	low := 49.0
	assert.Equal(t, model.StatusOutOfTarget, EvaluateStatus(kpi, model.Execution{ResultNumeric: &low}, 3.0))
	edge := 50.0
	assert.Equal(t, model.StatusWarning, EvaluateStatus(kpi, model.Execution{ResultNumeric: &edge}, 3.0))
	// Negative clamps to zero: no warning band at all.
	almost := 99.9
	assert.Equal(t, model.StatusOutOfTarget, EvaluateStatus(kpi, model.Execution{ResultNumeric: &almost}, -1))
}

func TestParseOperator_Synonyms(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Operator
	}{
		{"gte", model.OperatorGte},
		{">=", model.OperatorGte},
		{"≥", model.OperatorGte},
		{"higher_is_better", model.OperatorGte},
		{"maior_melhor", model.OperatorGte},
		{"LTE", model.OperatorLte},
		{"≤", model.OperatorLte},
		{"lower_is_better", model.OperatorLte},
		{"menor_melhor", model.OperatorLte},
		{"eq", model.OperatorEq},
		{"==", model.OperatorEq},
		{"igual", model.OperatorEq},
		{"something_else", model.OperatorGte},
		{"", model.OperatorGte},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, model.ParseOperator(tt.raw), "raw=%q", tt.raw)
	}
}

func TestAutomaticDecision(t *testing.T) {
	assert.Equal(t, model.DecisionApproved, AutomaticDecision(model.StatusInTarget))
	assert.Equal(t, model.DecisionApproved, AutomaticDecision(model.StatusNotApplicable))
	assert.Equal(t, model.DecisionNeedsChanges, AutomaticDecision(model.StatusWarning))
	assert.Equal(t, model.DecisionNeedsChanges, AutomaticDecision(model.StatusUnknown))
	assert.Equal(t, model.DecisionRejected, AutomaticDecision(model.StatusOutOfTarget))
}
