package services

import (
	"fmt"
	"testing"
	"time"

	model "github.com/devraj13/ComplyTrack/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// FixedTime is used to patch time.Now in tests.
var FixedTime = time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

// newTestDB opens a throwaway in-memory database sharing one cache across
// connections, so concurrent transactions in tests hit the same store. The
// busy timeout makes writers queue instead of failing fast.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	// One pooled connection: concurrent transactions queue instead of
	// tripping over sqlite's shared-cache table locks.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting underlying *sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Kpi{},
		&model.Execution{},
		&model.Evidence{},
		&model.GrcReview{},
		&model.Risk{},
		&model.RiskAssessment{},
		&model.ActionPlan{},
	); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	// Same partial unique indexes the postgres migration creates; sqlite
	// supports the WHERE clause directly.
	for _, stmt := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_plan_risk
			ON action_plans (tenant_id, risk_id)
			WHERE status <> 'done' AND risk_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_plan_execution
			ON action_plans (tenant_id, execution_id)
			WHERE status <> 'done' AND execution_id IS NOT NULL`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("creating partial unique index: %v", err)
		}
	}

	return db
}

func newTestService(t *testing.T) (*GrcService, model.TenantContext) {
	t.Helper()
	svc := &GrcService{db: newTestDB(t)}
	tenant := model.TenantContext{TenantID: uuid.NewString(), UserID: uuid.NewString()}
	return svc, tenant
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }

// mustKpi seeds a numeric gte KPI with a 5% buffer.
func mustKpi(t *testing.T, svc *GrcService, tenant model.TenantContext, mutate func(*KpiInput)) *model.Kpi {
	t.Helper()
	input := KpiInput{
		Code:        "KPI-001",
		Name:        "Backup success rate",
		KpiType:     "percent",
		RawOperator: "gte",
		TargetValue: floatPtr(100),
	}
	if mutate != nil {
		mutate(&input)
	}
	kpi, err := svc.CreateKpi(tenant, input)
	if err != nil {
		t.Fatalf("seeding kpi: %v", err)
	}
	return kpi
}

// mustExecution seeds an execution in draft with the given numeric result.
func mustExecution(t *testing.T, svc *GrcService, tenant model.TenantContext, kpi *model.Kpi, numeric *float64) *model.Execution {
	t.Helper()
	exec, err := svc.CreateExecution(tenant, kpi.ID, "2026-Q1", numeric, nil, "")
	if err != nil {
		t.Fatalf("seeding execution: %v", err)
	}
	return exec
}

// mustRisk seeds a risk at the given levels.
func mustRisk(t *testing.T, svc *GrcService, tenant model.TenantContext, impact, likelihood float64) *model.Risk {
	t.Helper()
	risk, err := svc.CreateRisk(tenant, "Vendor data exposure", "Third-party processor holds PII", impact, likelihood)
	if err != nil {
		t.Fatalf("seeding risk: %v", err)
	}
	return risk
}
