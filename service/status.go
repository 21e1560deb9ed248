package services

import (
	"math"

	model "github.com/devraj13/ComplyTrack/models"
)

// DefaultWarningBuffer is used when neither the caller nor the KPI supplies
// a buffer.
const DefaultWarningBuffer = 0.05

// EvaluateStatus classifies an execution's measured result against its KPI
// target. It is the single implementation behind both the live evaluation on
// save/submit and the configuration-edit preview; the two call sites must
// agree bit for bit.
//
// bufferPct overrides the KPI's own warning buffer when finite; pass NaN to
// use the KPI's configuration.
func EvaluateStatus(kpi model.Kpi, exec model.Execution, bufferPct float64) model.Status {
	if !kpi.IsActive {
		return model.StatusNotApplicable
	}
	if kpi.TargetValue == nil && kpi.TargetBoolean == nil {
		return model.StatusNotApplicable
	}

	buffer := effectiveBuffer(kpi, bufferPct)

	if kpi.KpiType == model.KpiTypeBoolean {
		return evaluateBoolean(kpi, exec)
	}
	return evaluateNumeric(kpi, exec, buffer)
}

// effectiveBuffer resolves the warning buffer: explicit override first, then
// the KPI's configuration, then the default; always clamped to [0, 0.5].
func effectiveBuffer(kpi model.Kpi, bufferPct float64) float64 {
	buffer := bufferPct
	if math.IsNaN(buffer) || math.IsInf(buffer, 0) {
		buffer = kpi.WarningBufferPct
	}
	if math.IsNaN(buffer) || math.IsInf(buffer, 0) {
		buffer = DefaultWarningBuffer
	}
	if buffer < 0 {
		buffer = 0
	}
	if buffer > 0.5 {
		buffer = 0.5
	}
	return buffer
}

// evaluateBoolean has no warning tier: equality or miss.
func evaluateBoolean(kpi model.Kpi, exec model.Execution) model.Status {
	if exec.ResultBoolean == nil {
		return model.StatusUnknown
	}
	var expected bool
	switch {
	case kpi.TargetBoolean != nil:
		expected = *kpi.TargetBoolean
	case kpi.TargetValue != nil:
		// Legacy rows stored boolean targets numerically.
		expected = *kpi.TargetValue >= 1
	default:
		return model.StatusNotApplicable
	}
	if *exec.ResultBoolean == expected {
		return model.StatusInTarget
	}
	return model.StatusOutOfTarget
}

func evaluateNumeric(kpi model.Kpi, exec model.Execution, buffer float64) model.Status {
	if kpi.TargetValue == nil {
		return model.StatusNotApplicable
	}
	if exec.ResultNumeric == nil {
		return model.StatusUnknown
	}

	target := *kpi.TargetValue
	value := *exec.ResultNumeric

	switch kpi.TargetOperator {
	case model.OperatorGte:
		floor := target * (1 - buffer)
		switch {
		case value >= target:
			return model.StatusInTarget
		case value >= floor:
			return model.StatusWarning
		default:
			return model.StatusOutOfTarget
		}
	case model.OperatorLte:
		ceiling := target * (1 + buffer)
		switch {
		case value <= target:
			return model.StatusInTarget
		case value <= ceiling:
			return model.StatusWarning
		default:
			return model.StatusOutOfTarget
		}
	case model.OperatorEq:
		// No warning tier for exact-match targets.
		if value == target {
			return model.StatusInTarget
		}
		return model.StatusOutOfTarget
	}
	return model.StatusUnknown
}

// AutomaticDecision suggests a review decision from an auto-status. The
// finalize-review screen pre-selects it; only the reviewer's explicit
// decision is ever persisted.
func AutomaticDecision(status model.Status) model.Decision {
	switch status {
	case model.StatusInTarget, model.StatusNotApplicable:
		return model.DecisionApproved
	case model.StatusWarning:
		return model.DecisionNeedsChanges
	case model.StatusOutOfTarget:
		return model.DecisionRejected
	default:
		return model.DecisionNeedsChanges
	}
}
