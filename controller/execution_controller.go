package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateExecution saves the first measurement for a (KPI, period).
func (c *GrcController) CreateExecution(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}

	var req struct {
		KpiID         string   `json:"kpi_id" binding:"required"`
		Period        string   `json:"period" binding:"required"`
		ResultNumeric *float64 `json:"result_numeric"`
		ResultBoolean *bool    `json:"result_boolean"`
		ResultNotes   string   `json:"result_notes"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid execution payload", "details": err.Error()})
		return
	}

	exec, err := c.service.CreateExecution(tenant, req.KpiID, req.Period, req.ResultNumeric, req.ResultBoolean, req.ResultNotes)
	if err != nil {
		log.Printf("[CreateExecution] Error creating execution: %v", err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message":   "Execution created successfully",
		"execution": exec,
	})
}

// SaveExecutionResult updates result fields and recomputes auto_status
// without touching the workflow state.
func (c *GrcController) SaveExecutionResult(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	executionID := ctx.Param("id")
	if executionID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Execution ID required"})
		return
	}

	var req struct {
		ResultNumeric *float64 `json:"result_numeric"`
		ResultBoolean *bool    `json:"result_boolean"`
		ResultNotes   *string  `json:"result_notes"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid result payload", "details": err.Error()})
		return
	}

	exec, err := c.service.SaveExecutionResult(tenant, executionID, req.ResultNumeric, req.ResultBoolean, req.ResultNotes)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message":   "Result saved successfully",
		"execution": exec,
	})
}

// SubmitExecution moves an execution into review.
func (c *GrcController) SubmitExecution(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	executionID := ctx.Param("id")
	if executionID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Execution ID required"})
		return
	}

	exec, err := c.service.SubmitExecution(tenant, executionID)
	if err != nil {
		log.Printf("[SubmitExecution] Error submitting execution %s: %v", executionID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message":   "Execution submitted successfully",
		"execution": exec,
	})
}

// AttachEvidence records an evidence pointer backing an execution.
func (c *GrcController) AttachEvidence(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	executionID := ctx.Param("id")
	if executionID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Execution ID required"})
		return
	}

	var req struct {
		FileName string `json:"file_name" binding:"required"`
		FileURL  string `json:"file_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evidence payload", "details": err.Error()})
		return
	}

	evidence, err := c.service.AttachEvidence(tenant, executionID, req.FileName, req.FileURL)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Evidence attached successfully",
		"evidence": evidence,
	})
}
