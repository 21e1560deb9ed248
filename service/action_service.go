package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	model "github.com/devraj13/ComplyTrack/models"
)

// CreateManualActionPlan raises a plan by hand, optionally tied to a risk or
// execution origin. Unlike the Ensure* triggers, an explicit creation against
// an origin that already has an open plan is surfaced as an invariant error
// rather than a soft already_open outcome.
func (s *GrcService) CreateManualActionPlan(tenant model.TenantContext, title, description, priorityRaw string, riskID, executionID *string, dueInDays int) (*model.ActionPlan, error) {
	if title == "" {
		return nil, validationf("plan title is required")
	}
	if riskID != nil && executionID != nil {
		return nil, validationf("a plan's origin is at most one of risk or execution")
	}
	priority := model.PriorityMedium
	if priorityRaw != "" {
		switch model.Priority(priorityRaw) {
		case model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical:
			priority = model.Priority(priorityRaw)
		default:
			return nil, validationf("invalid priority %q", priorityRaw)
		}
	}
	if dueInDays <= 0 {
		dueInDays = DefaultPlanDueDays
	}

	plan := model.ActionPlan{
		TenantID:    tenant.TenantID,
		Title:       title,
		Description: description,
		Status:      model.PlanNotStarted,
		Priority:    priority,
		AssignedTo:  tenant.UserID,
		DueDate:     time.Now().AddDate(0, 0, dueInDays),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	switch {
	case riskID != nil:
		risk, err := s.getRisk(tenant, *riskID)
		if err != nil {
			return nil, err
		}
		plan.RiskID = &risk.ID
		outcome, err := s.insertPlanIfAbsent(plan, "risk_id = ?", risk.ID)
		if err != nil {
			return nil, err
		}
		if !outcome.Created {
			return nil, fmt.Errorf("risk %s: %w", risk.ID, ErrPlanAlreadyOpen)
		}
		plan.ID = outcome.PlanID
	case executionID != nil:
		exec, err := s.getExecution(tenant, *executionID)
		if err != nil {
			return nil, err
		}
		plan.ExecutionID = &exec.ID
		outcome, err := s.insertPlanIfAbsent(plan, "execution_id = ?", exec.ID)
		if err != nil {
			return nil, err
		}
		if !outcome.Created {
			return nil, fmt.Errorf("execution %s: %w", exec.ID, ErrPlanAlreadyOpen)
		}
		plan.ID = outcome.PlanID
	default:
		// No origin means no dedup key; standalone plans may coexist.
		if err := s.db.Create(&plan).Error; err != nil {
			log.Printf("[CreateManualActionPlan] Error creating plan: %v", err)
			return nil, err
		}
		s.indexActionPlan(plan)
	}

	log.Printf("[CreateManualActionPlan] Plan %s created (priority=%s)", plan.ID, plan.Priority)
	return &plan, nil
}

// ListOpenActionPlans retrieves open plans with their source titles resolved,
// for the remediation work queue.
func (s *GrcService) ListOpenActionPlans(tenant model.TenantContext) ([]map[string]interface{}, error) {
	var plans []model.ActionPlan
	if err := s.db.Where("tenant_id = ? AND status <> ?", tenant.TenantID, model.PlanDone).
		Order("due_date").Find(&plans).Error; err != nil {
		log.Printf("[ListOpenActionPlans] Error fetching open plans: %v", err)
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(plans))
	for _, plan := range plans {
		entry := map[string]interface{}{
			"id":          plan.ID,
			"title":       plan.Title,
			"description": plan.Description,
			"status":      plan.Status,
			"priority":    plan.Priority,
			"assigned_to": plan.AssignedTo,
			"due_date":    plan.DueDate,
		}
		if plan.RiskID != nil {
			var risk model.Risk
			if err := s.db.Select("title").Where("id = ?", *plan.RiskID).First(&risk).Error; err != nil {
				log.Printf("[ListOpenActionPlans] Error fetching risk title for plan %s: %v", plan.ID, err)
			} else {
				entry["source"] = "risk"
				entry["source_title"] = risk.Title
			}
		}
		if plan.ExecutionID != nil && plan.KpiID != nil {
			var kpi model.Kpi
			if err := s.db.Select("code, name").Where("id = ?", *plan.KpiID).First(&kpi).Error; err != nil {
				log.Printf("[ListOpenActionPlans] Error fetching kpi for plan %s: %v", plan.ID, err)
			} else {
				entry["source"] = "execution"
				entry["source_title"] = fmt.Sprintf("%s %s", kpi.Code, kpi.Name)
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// UpdateActionPlanStatus transitions a plan, including the explicit
// user-driven close. Reopening a done plan is allowed; the open-plan indexes
// will block it if another open plan has taken the origin in the meantime.
func (s *GrcService) UpdateActionPlanStatus(tenant model.TenantContext, planID, statusRaw string) (*model.ActionPlan, error) {
	status, err := model.ParsePlanStatus(statusRaw)
	if err != nil {
		return nil, validationf("%v", err)
	}

	var plan model.ActionPlan
	if err := s.db.Where("id = ? AND tenant_id = ?", planID, tenant.TenantID).First(&plan).Error; err != nil {
		return nil, notFoundf("action plan %s", planID)
	}

	plan.Status = status
	plan.UpdatedAt = time.Now()
	if err := s.db.Model(&plan).Updates(map[string]interface{}{
		"status":     plan.Status,
		"updated_at": plan.UpdatedAt,
	}).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("plan %s cannot reopen: %w", planID, ErrPlanAlreadyOpen)
		}
		log.Printf("[UpdateActionPlanStatus] Error updating plan %s: %v", planID, err)
		return nil, err
	}
	log.Printf("[UpdateActionPlanStatus] Plan %s moved to %s", planID, status)
	return &plan, nil
}

// indexActionPlan pushes a plan document into Elasticsearch. Indexing is
// best-effort: the plan row is already the authoritative state, so a missing
// or failing ES node only costs search freshness.
func (s *GrcService) indexActionPlan(plan model.ActionPlan) {
	if s.esClient == nil {
		return
	}

	doc := map[string]interface{}{
		"tenant_id":   plan.TenantID,
		"title":       plan.Title,
		"description": plan.Description,
		"status":      plan.Status,
		"priority":    plan.Priority,
		"due_date":    plan.DueDate,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		log.Printf("[indexActionPlan] Error marshaling plan %s: %v", plan.ID, err)
		return
	}

	res, err := s.esClient.Index(
		"action_plans",
		bytes.NewReader(body),
		s.esClient.Index.WithDocumentID(plan.ID),
		s.esClient.Index.WithContext(context.Background()),
	)
	if err != nil {
		log.Printf("[indexActionPlan] Elasticsearch indexing error for plan %s: %v", plan.ID, err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Printf("[indexActionPlan] Elasticsearch rejected plan %s: %s", plan.ID, res.String())
	}
}

// SearchActionPlans runs a tenant-filtered full-text query over indexed
// plans.
func (s *GrcService) SearchActionPlans(tenant model.TenantContext, query string) ([]map[string]interface{}, error) {
	if s.esClient == nil {
		return nil, fmt.Errorf("elasticsearch client is not initialized")
	}

	searchQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title", "description"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"tenant_id": tenant.TenantID},
				},
			},
		},
	}
	body, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(context.Background()),
		s.esClient.Search.WithIndex("action_plans"),
		s.esClient.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s", res.String())
	}

	var result map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hitsMap, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid hits structure in search response")
	}
	hitsArray, ok := hitsMap["hits"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid hits array in search response")
	}

	var plans []map[string]interface{}
	for _, hit := range hitsArray {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		source, ok := hitMap["_source"].(map[string]interface{})
		if !ok {
			continue
		}
		plans = append(plans, source)
	}
	return plans, nil
}
