package main

import (
	"log"
	"net/http"

	controller "github.com/devraj13/ComplyTrack/controller"
	"github.com/devraj13/ComplyTrack/initializers"
	middleware "github.com/devraj13/ComplyTrack/middleware"
	service "github.com/devraj13/ComplyTrack/service"

	"github.com/gin-gonic/gin"
)

func init() {
	// if err := initializers.LoadEnv(); err != nil {
	// 	log.Fatalf("[CRITICAL] Failed to load env: %s", err)
	// }
	if err := initializers.ConnectDB(); err != nil {
		log.Fatalf("[CRITICAL] Failed to initialize database connection: %s", err)
	}
	if err := initializers.Migrate(); err != nil {
		log.Fatalf("[CRITICAL] Failed to run database migrations: %s", err)
	}
}

func main() {
	grcService, err := service.NewGrcService(initializers.DB)
	if err != nil {
		log.Fatalf("Failed to initialize GRC service: %s", err)
	}

	grcController := controller.NewGrcController(grcService)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	// Global rate limiter for most routes
	router.Use(middleware.GlobalRateLimiter.Limit())

	// Healthcheck endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Everything below is tenant-scoped
	api := router.Group("/", middleware.TenantMiddleware())

	// KPI configuration
	api.POST("/kpis",
		middleware.StrictRateLimiter.Limit(),
		grcController.CreateKpi)
	api.GET("/kpis", grcController.ListKpis)
	api.PUT("/kpis/:id",
		middleware.StrictRateLimiter.Limit(),
		grcController.UpdateKpi)
	api.POST("/kpis/:id/preview-status", grcController.PreviewStatus)

	// Execution lifecycle
	api.POST("/executions",
		middleware.StrictRateLimiter.Limit(),
		grcController.CreateExecution)
	api.PUT("/executions/:id/result", grcController.SaveExecutionResult)
	api.POST("/executions/:id/submit",
		middleware.StrictRateLimiter.Limit(),
		grcController.SubmitExecution)
	api.POST("/executions/:id/evidence", grcController.AttachEvidence)

	// Review workflow
	api.POST("/executions/:id/start-review", grcController.StartReview)
	api.POST("/executions/:id/review",
		middleware.StrictRateLimiter.Limit(),
		grcController.SubmitReview)
	api.POST("/executions/:id/preview-review", grcController.PreviewReviewDecision)
	api.POST("/executions/:id/finalize-review",
		middleware.StrictRateLimiter.Limit(),
		grcController.FinalizeReview)

	// Risks
	api.POST("/risks",
		middleware.StrictRateLimiter.Limit(),
		grcController.CreateRisk)
	api.POST("/risks/:id/assessments",
		middleware.StrictRateLimiter.Limit(),
		grcController.RecordRiskAssessment)
	api.GET("/risks/:id/assessments", grcController.ListRiskAssessments)
	api.POST("/risks/:id/action-plan", grcController.EnsureRiskActionPlan)

	// Remediation
	api.POST("/action-plans",
		middleware.StrictRateLimiter.Limit(),
		grcController.CreateActionPlan)
	api.GET("/action-plans", grcController.ListOpenActionPlans)
	api.PUT("/action-plans/:id/status", grcController.UpdateActionPlanStatus)
	api.GET("/action-plans/search", grcController.SearchActionPlans)

	router.Run(":8080")
}
