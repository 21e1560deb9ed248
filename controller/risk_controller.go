package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateRisk registers a risk with its initial impact/likelihood scoring.
func (c *GrcController) CreateRisk(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}

	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description"`
		Impact      float64 `json:"impact" binding:"required"`
		Likelihood  float64 `json:"likelihood" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid risk payload", "details": err.Error()})
		return
	}

	risk, err := c.service.CreateRisk(tenant, req.Title, req.Description, req.Impact, req.Likelihood)
	if err != nil {
		log.Printf("[CreateRisk] Error creating risk: %v", err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Risk created successfully",
		"risk":    risk,
	})
}

// RecordRiskAssessment appends an assessment, rescoring the risk and firing
// the remediation trigger.
func (c *GrcController) RecordRiskAssessment(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	riskID := ctx.Param("id")
	if riskID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Risk ID required"})
		return
	}

	var req struct {
		Impact     float64                `json:"impact" binding:"required"`
		Likelihood float64                `json:"likelihood" binding:"required"`
		Context    map[string]interface{} `json:"context"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assessment payload", "details": err.Error()})
		return
	}

	assessment, outcome, err := c.service.RecordRiskAssessment(tenant, riskID, req.Impact, req.Likelihood, req.Context)
	if err != nil {
		log.Printf("[RecordRiskAssessment] Error assessing risk %s: %v", riskID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message":     "Assessment recorded successfully",
		"assessment":  assessment,
		"remediation": outcome,
	})
}

// ListRiskAssessments returns the append-only scoring history.
func (c *GrcController) ListRiskAssessments(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	riskID := ctx.Param("id")
	if riskID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Risk ID required"})
		return
	}

	assessments, err := c.service.ListRiskAssessments(tenant, riskID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"assessments": assessments,
		"total":       len(assessments),
	})
}

// EnsureRiskActionPlan fires the risk remediation trigger on demand.
func (c *GrcController) EnsureRiskActionPlan(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	riskID := ctx.Param("id")
	if riskID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Risk ID required"})
		return
	}

	var req struct {
		DueInDays int `json:"due_in_days"`
	}
	// Body is optional; the default due window applies when absent.
	_ = ctx.ShouldBindJSON(&req)

	outcome, err := c.service.EnsureActionPlanForRisk(tenant, riskID, req.DueInDays)
	if err != nil {
		log.Printf("[EnsureRiskActionPlan] Error triggering plan for risk %s: %v", riskID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"created": outcome.Created,
		"reason":  outcome.Reason,
		"plan_id": outcome.PlanID,
	})
}
