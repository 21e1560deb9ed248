package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateActionPlan raises a manual remediation plan.
func (c *GrcController) CreateActionPlan(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}

	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description"`
		Priority    string  `json:"priority"`
		RiskID      *string `json:"risk_id"`
		ExecutionID *string `json:"execution_id"`
		DueInDays   int     `json:"due_in_days"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan payload", "details": err.Error()})
		return
	}

	plan, err := c.service.CreateManualActionPlan(tenant, req.Title, req.Description, req.Priority, req.RiskID, req.ExecutionID, req.DueInDays)
	if err != nil {
		log.Printf("[CreateActionPlan] Error creating plan: %v", err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Action plan created successfully",
		"plan":    plan,
	})
}

// ListOpenActionPlans fetches open plans with source titles for the work
// queue screen.
func (c *GrcController) ListOpenActionPlans(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}

	plans, err := c.service.ListOpenActionPlans(tenant)
	if err != nil {
		log.Printf("[ListOpenActionPlans] Error fetching plans: %v", err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Action plans retrieved successfully",
		"plans":   plans,
		"total":   len(plans),
	})
}

// UpdateActionPlanStatus transitions a plan; done is the explicit close.
func (c *GrcController) UpdateActionPlanStatus(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	planID := ctx.Param("id")
	if planID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Plan ID required"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Plan status required", "details": err.Error()})
		return
	}

	plan, err := c.service.UpdateActionPlanStatus(tenant, planID, req.Status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Action plan updated successfully",
		"plan":    plan,
	})
}

// SearchActionPlans runs a full-text query over indexed plans.
func (c *GrcController) SearchActionPlans(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	results, err := c.service.SearchActionPlans(tenant, query)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Search completed successfully",
		"results": results,
	})
}
