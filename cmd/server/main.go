package main

import (
	"workitem-resolver-backend/internal/api/routes"
	"workitem-resolver-backend/internal/config"
	"workitem-resolver-backend/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init("info", false)
		logger.New().WithError(err).Fatal("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, cfg.LogJSON)

	router, workItemService := routes.SetupRoutes(cfg)

	// Best effort: a failed session still lets the server come up so the
	// failure is visible through /api/v1/session and re-initializable
	if err := workItemService.InitializeSession(); err != nil {
		logger.New().WithError(err).Warn("Initial session setup failed")
	}

	logger.New().WithField("port", cfg.Port).Info("Starting work item resolver backend")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.New().WithError(err).Fatal("Server stopped")
	}
}
