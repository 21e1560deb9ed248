package controller

import (
	"errors"
	"net/http"

	model "github.com/devraj13/ComplyTrack/models"
	service "github.com/devraj13/ComplyTrack/service"

	"github.com/gin-gonic/gin"
)

// GrcController manages HTTP requests for the compliance engine.
type GrcController struct {
	service *service.GrcService
}

// NewGrcController initializes the controller with the service
func NewGrcController(service *service.GrcService) *GrcController {
	return &GrcController{service}
}

// tenantFrom pulls the TenantContext resolved by middleware. Routes behind
// TenantMiddleware always have it; the zero check is a guard against wiring
// mistakes.
func tenantFrom(ctx *gin.Context) (model.TenantContext, bool) {
	value, exists := ctx.Get("tenant")
	if !exists {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Tenant context missing"})
		return model.TenantContext{}, false
	}
	tenant, ok := value.(model.TenantContext)
	if !ok || tenant.TenantID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Tenant context missing"})
		return model.TenantContext{}, false
	}
	return tenant, true
}

// respondError maps the service failure taxonomy onto HTTP statuses.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPlanAlreadyOpen):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
