package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"workitem-resolver-backend/internal/api/handlers"
	"workitem-resolver-backend/internal/api/middleware"
	"workitem-resolver-backend/internal/config"
	"workitem-resolver-backend/internal/service"
	"workitem-resolver-backend/internal/session"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(cfg *config.Config) (*gin.Engine, *service.WorkItemService) {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	notifier := session.NewNotifier()
	workItemService := service.NewWorkItemService(cfg, notifier)

	healthHandler := handlers.NewHealthHandler(workItemService)
	workItemHandler := handlers.NewWorkItemHandler(workItemService)
	sessionHandler := handlers.NewSessionHandler(workItemService)

	router.GET("/health", healthHandler.Health)

	// Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		workitems := v1.Group("/workitems")
		{
			workitems.GET("/:id", workItemHandler.GetWorkItem)
			workitems.GET("/:id/url", workItemHandler.GetWorkItemURL)
			workitems.GET("/:id/attachments/:attachmentId", workItemHandler.GetAttachment)
		}

		v1.DELETE("/cache", workItemHandler.ClearCache)

		sessions := v1.Group("/session")
		{
			sessions.GET("", sessionHandler.GetStatus)
			sessions.POST("/initialize", sessionHandler.Initialize)
		}
	}

	// Catch-all route for undefined endpoints
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":      "Endpoint not found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString("request_id"),
		})
	})

	return router, workItemService
}
