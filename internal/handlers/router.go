package handlers

import (
	"github.com/edutrial/thpt-score-service/internal/services"
	"github.com/edutrial/thpt-score-service/internal/utils"
	"github.com/edutrial/thpt-score-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	graduationHandler *GraduationHandler
	batchHandler      *BatchHandler
	healthHandler     *HealthHandler
	auth              gin.HandlerFunc
}

// RouterOptions carries what the routes need beyond the services
type RouterOptions struct {
	Auth           gin.HandlerFunc
	HealthChecks   map[string]HealthCheck
	MaxUploadBytes int64
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	opts RouterOptions,
) *HandlerManager {
	auth := opts.Auth
	if auth == nil {
		auth = DevAuthMiddleware()
	}
	return &HandlerManager{
		graduationHandler: NewGraduationHandler(serviceManager.Graduation(), logger),
		batchHandler:      NewBatchHandler(serviceManager.Batch(), validator, logger, opts.MaxUploadBytes),
		healthHandler:     NewHealthHandler("thpt-score-service", opts.HealthChecks),
		auth:              auth,
	}
}

// NewRouter builds the gin engine with logging and recovery middleware
func NewRouter(hm *HandlerManager, logger utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.ContextLogger(logger), utils.LoggerMiddleware(logger))
	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthHandler.Health)

	v1 := router.Group("/api/v1")
	{
		// Public calculator
		score := v1.Group("/graduation-score")
		{
			score.GET("/form", hm.graduationHandler.GetForm)
			score.POST("/validate", hm.graduationHandler.ValidateInput)
			score.POST("/calculate", hm.graduationHandler.Calculate)
		}

		// Staff batch scoring
		batches := v1.Group("/batches", hm.auth)
		{
			batches.POST("", hm.batchHandler.UploadBatch)
			batches.GET("", hm.batchHandler.ListBatches)
			batches.GET("/:id", hm.batchHandler.GetBatch)
			batches.GET("/:id/results", hm.batchHandler.GetBatchResults)
			batches.GET("/:id/report", hm.batchHandler.DownloadReport)
			batches.DELETE("/:id", hm.batchHandler.DeleteBatch)
		}
	}
}
