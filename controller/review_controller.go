package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartReview moves a submitted execution to under_review.
func (c *GrcController) StartReview(ctx *gin.Context) {
	tenant, ok := tenantFrom(ctx)
	if !ok {
		return
	}
	executionID := ctx.Param("id")
	if executionID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Execution ID required"})
		return
	}

	exec, err := c.service.StartReview(tenant, executionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message":   "Review started",
		"execution": exec,
	})
}

// SubmitReview records the reviewer's decision on an execution.
func (c *GrcController) SubmitReview(ctx *gin.Context) {
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
		Decision string `json:"decision" binding:"required"`
		Comment  string `json:"comment" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Decision and comment are required", "details": err.Error()})
		return
	}

	review, err := c.service.SubmitReview(tenant, executionID, req.Decision, req.Comment)
	if err != nil {
		log.Printf("[SubmitReview] Error reviewing execution %s: %v", executionID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Review recorded successfully",
		"review":  review,
	})
}

// PreviewReviewDecision returns the recomputed status and suggested decision
// for the finalize screen, optionally against an overridden result.
func (c *GrcController) PreviewReviewDecision(ctx *gin.Context) {
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
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preview payload", "details": err.Error()})
		return
	}

	preview, err := c.service.PreviewReviewDecision(tenant, executionID, req.ResultNumeric)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, preview)
}

// FinalizeReview optionally overrides the numeric result, then records the
// reviewer's explicit decision.
func (c *GrcController) FinalizeReview(ctx *gin.Context) {
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
		Decision      string   `json:"decision" binding:"required"`
		Comment       string   `json:"comment" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Decision and comment are required", "details": err.Error()})
		return
	}

	review, err := c.service.FinalizeReview(tenant, executionID, req.ResultNumeric, req.Decision, req.Comment)
	if err != nil {
		log.Printf("[FinalizeReview] Error finalizing review for execution %s: %v", executionID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Review finalized successfully",
		"review":  review,
	})
}
