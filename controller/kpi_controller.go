package controller

import (
	"log"
	"net/http"

	service "github.com/devraj13/ComplyTrack/service"

	"github.com/gin-gonic/gin"
)

// CreateKpi registers a KPI configuration for the tenant.
func (c *GrcController) CreateKpi(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}

	var input service.KpiInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid KPI payload", "details": err.Error()})
		return
	}

	kpi, err := c.service.CreateKpi(tenant, input)
	if err != nil {
		log.Printf("[CreateKpi] Error creating KPI: %v", err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "KPI created successfully",
		"kpi":     kpi,
	})
}

// ListKpis returns every KPI for the tenant.
func (c *GrcController) ListKpis(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}

	kpis, err := c.service.ListKpis(tenant)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"kpis":  kpis,
		"total": len(kpis),
	})
}

// UpdateKpi applies a configuration edit.
func (c *GrcController) UpdateKpi(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	kpiID := ctx.Param("id")
	if kpiID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "KPI ID required"})
		return
	}

	var input service.KpiInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid KPI payload", "details": err.Error()})
		return
	}

	kpi, err := c.service.UpdateKpi(tenant, kpiID, input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "KPI updated successfully",
		"kpi":     kpi,
	})
}

// PreviewStatus evaluates a hypothetical result against the KPI's target so
// the configuration screen can show the status live while editing.
func (c *GrcController) PreviewStatus(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	kpiID := ctx.Param("id")
	if kpiID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "KPI ID required"})
		return
	}

	var req struct {
		ResultNumeric *float64 `json:"result_numeric"`
		ResultBoolean *bool    `json:"result_boolean"`
		BufferPct     *float64 `json:"buffer_pct"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preview payload", "details": err.Error()})
		return
	}

	status, err := c.service.PreviewStatus(tenant, kpiID, req.ResultNumeric, req.ResultBoolean, req.BufferPct)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": status})
}
