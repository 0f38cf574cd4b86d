package router

import (
	"github.com/gin-gonic/gin"

	"doccompare/internal/handler"
	"doccompare/internal/middleware"
	"doccompare/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	compareH *handler.ComparisonHandler,
	runH *handler.RunHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/token", authH.Token)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	compare := protected.Group("/compare")
	compare.POST("/documents", compareH.CompareDocuments)
	compare.POST("/spreadsheets", compareH.CompareSpreadsheets)
	compare.POST("/spreadsheets/columns", compareH.CommonColumns)

	runs := protected.Group("/runs")
	runs.GET("", runH.List)
	runs.GET("/:id", runH.GetByID)
	runs.GET("/:id/report", runH.Report)
	runs.DELETE("/:id", runH.Delete)

	return r
}
