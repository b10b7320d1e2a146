package handlers

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/services"
	"github.com/SAP-F-2025/attempt-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	testHandler    *TestHandler
	attemptHandler *AttemptHandler
}

func NewHandlerManager(
	catalogService services.CatalogService,
	attemptService services.AttemptService,
	exporter ResultExporter,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		testHandler:    NewTestHandler(catalogService, attemptService, logger),
		attemptHandler: NewAttemptHandler(attemptService, exporter, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1", Identity())
	{
		tests := v1.Group("/tests")
		{
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.GET("/:id/attempts", hm.testHandler.ListAttempts)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.StartAttempt)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.PUT("/:id/autosave", hm.attemptHandler.AutoSave)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.POST("/:id/abandon", hm.attemptHandler.AbandonAttempt)
			attempts.GET("/:id/time-remaining", hm.attemptHandler.GetTimeRemaining)
			attempts.GET("/:id/result", hm.attemptHandler.GetResult)
			attempts.GET("/:id/result/export", hm.attemptHandler.ExportResult)
		}
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "attempt-service",
		"timestamp": time.Now().UTC(),
	})
}
