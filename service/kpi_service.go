package services

import (
	"log"
	"math"
	"time"

	model "github.com/devraj13/ComplyTrack/models"
)

// KpiInput is the configuration payload for create/update. RawOperator takes
// any of the historical operator spellings; normalization happens here, once,
// and only the closed Operator enum is persisted.
type KpiInput struct {
	ControlID        string   `json:"control_id"`
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	KpiType          string   `json:"kpi_type"`
	RawOperator      string   `json:"target_operator"`
	TargetValue      *float64 `json:"target_value"`
	TargetBoolean    *bool    `json:"target_boolean"`
	WarningBufferPct *float64 `json:"warning_buffer_pct"`
	EvidenceRequired *bool    `json:"evidence_required"`
	IsActive         *bool    `json:"is_active"`
}

func parseKpiType(raw string) (model.KpiType, error) {
	switch model.KpiType(raw) {
	case model.KpiTypeNumber, "":
		return model.KpiTypeNumber, nil
	case model.KpiTypePercent:
		return model.KpiTypePercent, nil
	case model.KpiTypeBoolean:
		return model.KpiTypeBoolean, nil
	}
	return "", validationf("invalid kpi_type %q", raw)
}

// CreateKpi registers a KPI configuration.
func (s *GrcService) CreateKpi(tenant model.TenantContext, input KpiInput) (*model.Kpi, error) {
	if input.Code == "" {
		return nil, validationf("kpi code is required")
	}
	kpiType, err := parseKpiType(input.KpiType)
	if err != nil {
		return nil, err
	}

	kpi := model.Kpi{
		TenantID:         tenant.TenantID,
		ControlID:        input.ControlID,
		Code:             input.Code,
		Name:             input.Name,
		Description:      input.Description,
		KpiType:          kpiType,
		TargetOperator:   model.ParseOperator(input.RawOperator),
		TargetValue:      input.TargetValue,
		TargetBoolean:    input.TargetBoolean,
		WarningBufferPct: DefaultWarningBuffer,
		EvidenceRequired: false,
		IsActive:         true,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if input.WarningBufferPct != nil {
		if *input.WarningBufferPct < 0 || *input.WarningBufferPct > 0.5 {
			return nil, validationf("warning_buffer_pct must be within [0, 0.5]")
		}
		kpi.WarningBufferPct = *input.WarningBufferPct
	}
	if input.EvidenceRequired != nil {
		kpi.EvidenceRequired = *input.EvidenceRequired
	}
	if input.IsActive != nil {
		kpi.IsActive = *input.IsActive
	}

	if err := s.db.Create(&kpi).Error; err != nil {
		log.Printf("[CreateKpi] Error creating kpi %s: %v", input.Code, err)
		return nil, err
	}
	log.Printf("[CreateKpi] KPI %s created (%s, operator=%s)", kpi.Code, kpi.KpiType, kpi.TargetOperator)
	return &kpi, nil
}

// UpdateKpi applies a configuration edit. Executions are not touched; their
// auto_status is recomputed on the next result save or submission.
func (s *GrcService) UpdateKpi(tenant model.TenantContext, kpiID string, input KpiInput) (*model.Kpi, error) {
	kpi, err := s.getKpi(tenant, kpiID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if input.Code != "" {
		updates["code"] = input.Code
	}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.KpiType != "" {
		kpiType, err := parseKpiType(input.KpiType)
		if err != nil {
			return nil, err
		}
		updates["kpi_type"] = kpiType
	}
	if input.RawOperator != "" {
		updates["target_operator"] = model.ParseOperator(input.RawOperator)
	}
	if input.TargetValue != nil {
		updates["target_value"] = input.TargetValue
	}
	if input.TargetBoolean != nil {
		updates["target_boolean"] = input.TargetBoolean
	}
	if input.WarningBufferPct != nil {
		if *input.WarningBufferPct < 0 || *input.WarningBufferPct > 0.5 {
			return nil, validationf("warning_buffer_pct must be within [0, 0.5]")
		}
		updates["warning_buffer_pct"] = *input.WarningBufferPct
	}
	if input.EvidenceRequired != nil {
		updates["evidence_required"] = *input.EvidenceRequired
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.db.Model(kpi).Updates(updates).Error; err != nil {
		log.Printf("[UpdateKpi] Error updating kpi %s: %v", kpiID, err)
		return nil, err
	}
	return s.getKpi(tenant, kpiID)
}

// ListKpis returns every KPI for the tenant.
func (s *GrcService) ListKpis(tenant model.TenantContext) ([]model.Kpi, error) {
	var kpis []model.Kpi
	if err := s.db.Where("tenant_id = ?", tenant.TenantID).Order("code").Find(&kpis).Error; err != nil {
		log.Printf("[ListKpis] Error fetching kpis: %v", err)
		return nil, err
	}
	return kpis, nil
}

// PreviewStatus evaluates a hypothetical result against a KPI's current (or
// edited) configuration. It runs the exact evaluator the live path runs, so
// the preview on the config screen and the persisted auto_status can never
// drift apart.
func (s *GrcService) PreviewStatus(tenant model.TenantContext, kpiID string, numeric *float64, boolean *bool, bufferOverride *float64) (model.Status, error) {
	kpi, err := s.getKpi(tenant, kpiID)
	if err != nil {
		return "", err
	}
	probe := model.Execution{
		ResultNumeric: numeric,
		ResultBoolean: boolean,
	}
	buffer := math.NaN()
	if bufferOverride != nil {
		buffer = *bufferOverride
	}
	return EvaluateStatus(*kpi, probe, buffer), nil
}
