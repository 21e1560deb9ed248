package middleware

import (
	"net/http"

	model "github.com/devraj13/ComplyTrack/models"

	"github.com/gin-gonic/gin"
)

// TenantMiddleware resolves the caller's tenant and user from request
// headers. Tenant provisioning and authentication live upstream; this
// service only requires that every engine call carries a tenant id.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader("X-Tenant-ID")
		if tenantID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "X-Tenant-ID header is required"})
			c.Abort()
			return
		}
		c.Set("tenant", model.TenantContext{
			TenantID: tenantID,
			UserID:   c.GetHeader("X-User-ID"),
		})
		c.Next()
	}
}
