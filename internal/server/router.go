// Package server assembles the HTTP router from the services and handlers.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"expensetrack/internal/budget"
	"expensetrack/internal/config"
	"expensetrack/internal/handlers"
	"expensetrack/internal/middleware"
	"expensetrack/internal/services"

	_ "expensetrack/internal/docs" // swagger docs
)

// Options tunes router assembly.
type Options struct {
	// Now overrides the reconciler clock. Nil means time.Now.
	Now func() time.Time
}

// ReportOptions derives the report presentation options from configuration.
func ReportOptions(cfg *config.Config) budget.Options {
	return budget.Options{
		Places:      cfg.ReportDisplayPlaces,
		TotalsLabel: cfg.ReportTotalsLabel,
	}
}

// NewRouter wires every service and handler onto a new Gin engine.
func NewRouter(db *gorm.DB, cfg *config.Config, opts Options) *gin.Engine {
	reportOpts := ReportOptions(cfg)

	// Services
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	expenseService := services.NewExpenseService(db)
	lineService := services.NewBudgetLineService(db)
	reconciler := services.NewBudgetReconciler(db, reportOpts, opts.Now)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	lineHandler := handlers.NewBudgetLineHandler(lineService, auditService)
	budgetHandler := handlers.NewBudgetHandler(reconciler, auditService, reportOpts)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Unattended imports authenticate with the shared API key.
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.ImportKeyMiddleware(cfg.ImportAPIKey))
	pipeline.POST("/expenses/import", expenseHandler.ImportExpenses)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())
	admin := middleware.RequireAdmin()

	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/auth/logout", authHandler.Logout)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.POST("", admin, categoryHandler.CreateCategory)
	categories.PUT("/:id", admin, categoryHandler.UpdateCategory)
	categories.DELETE("/:id", admin, categoryHandler.DeleteCategory)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.POST("/import", admin, expenseHandler.ImportExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	protected.GET("/budget", budgetHandler.GetBudget)

	lines := protected.Group("/budget-lines")
	lines.GET("", lineHandler.GetBudgetLines)
	lines.GET("/:id", lineHandler.GetBudgetLine)
	lines.POST("", admin, lineHandler.CreateBudgetLine)
	lines.PUT("/:id", admin, lineHandler.UpdateBudgetLine)
	lines.DELETE("/:id", admin, lineHandler.DeleteBudgetLine)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
