package main

import (
	"fmt"
	"os"

	"expensetrack/internal/config"
	"expensetrack/internal/database"
	"expensetrack/internal/logger"
	"expensetrack/internal/server"
	"expensetrack/internal/validator"
)

// @title           Expensetrack API
// @version         1.0
// @description     Expense ledger with a monthly budget reconciliation.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ImportKey
// @in header
// @name X-API-Key

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	router := server.NewRouter(dbManager.DB(), appConfig, server.Options{})

	if appConfig.ImportAPIKey == "" {
		log.Info("IMPORT_API_KEY not set, unattended imports are disabled")
	}
	log.Infof("Starting expensetrack server on port %s (driver %s)", appConfig.Port, appConfig.DBDriver)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
