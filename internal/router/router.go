package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mederror/internal/handler"
	"mederror/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Health   *handler.HealthHandler
	Parse    *handler.ParseHandler
	Evaluate *handler.EvaluateHandler
	Runs     *handler.RunHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(h Handlers, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	v1 := r.Group("/api/v1")
	v1.POST("/parse", h.Parse.Parse)
	v1.POST("/evaluate", h.Evaluate.Evaluate)

	runs := v1.Group("/runs")
	runs.GET("", h.Runs.List)
	runs.GET("/:id", h.Runs.GetByID)

	return r
}
