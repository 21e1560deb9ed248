package services

import (
	"fmt"
	"log"
	"os"

	model "github.com/devraj13/ComplyTrack/models"

	"github.com/elastic/go-elasticsearch/v8"
	"gorm.io/gorm"
)

// GrcService bundles the compliance engine: KPI configuration, execution
// workflow, review decisions, risk scoring and remediation triggers.
type GrcService struct {
	db       *gorm.DB
	esClient *elasticsearch.Client
}

// NewGrcService initializes the service. Elasticsearch is optional: when
// ELASTICSEARCH_URL is unset or the client fails to build, plan indexing and
// search degrade gracefully instead of blocking startup.
func NewGrcService(db *gorm.DB) (*GrcService, error) {
	if db == nil {
		return nil, fmt.Errorf("nil database handle")
	}

	esURL := os.Getenv("ELASTICSEARCH_URL")
	var esClient *elasticsearch.Client
	if esURL != "" {
		esConfig := elasticsearch.Config{
			Addresses: []string{esURL},
		}
		var err error
		esClient, err = elasticsearch.NewClient(esConfig)
		if err != nil {
			log.Printf("Warning: Failed to create Elasticsearch client: %v", err)
			esClient = nil
		}
	}

	return &GrcService{db: db, esClient: esClient}, nil
}

// getExecution fetches an execution scoped to the caller's tenant. A row
// owned by another tenant is indistinguishable from a missing row.
func (s *GrcService) getExecution(tenant model.TenantContext, executionID string) (*model.Execution, error) {
	var exec model.Execution
	err := s.db.Where("id = ? AND tenant_id = ?", executionID, tenant.TenantID).First(&exec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFoundf("execution %s", executionID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching execution %s: %w", executionID, err)
	}
	return &exec, nil
}

func (s *GrcService) getKpi(tenant model.TenantContext, kpiID string) (*model.Kpi, error) {
	var kpi model.Kpi
	err := s.db.Where("id = ? AND tenant_id = ?", kpiID, tenant.TenantID).First(&kpi).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFoundf("kpi %s", kpiID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching kpi %s: %w", kpiID, err)
	}
	return &kpi, nil
}

func (s *GrcService) getRisk(tenant model.TenantContext, riskID string) (*model.Risk, error) {
	var risk model.Risk
	err := s.db.Where("id = ? AND tenant_id = ?", riskID, tenant.TenantID).First(&risk).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFoundf("risk %s", riskID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching risk %s: %w", riskID, err)
	}
	return &risk, nil
}
