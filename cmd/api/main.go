package main

import (
	"fmt"
	"net/http"
	"os"

	"meubolso/internal/config"
	"meubolso/internal/database"
	"meubolso/internal/handlers"
	"meubolso/internal/logger"
	"meubolso/internal/middleware"
	"meubolso/internal/services"
	"meubolso/internal/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Bring the schema up to date
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	shoppingService := services.NewShoppingService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	summaryHandler := handlers.NewSummaryHandler(transactionService)
	shoppingHandler := handlers.NewShoppingHandler(shoppingService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Financial routes
	financial := protected.Group("/financial")

	categories := financial.Group("/categories")
	categories.GET("", categoryHandler.GetCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := financial.Group("/transactions")
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	summary := financial.Group("/summary")
	summary.GET("/monthly-view", summaryHandler.GetMonthlyView)
	summary.GET("/installment-plans", summaryHandler.GetInstallmentPlans)

	// Shopping routes
	shopping := protected.Group("/shopping")

	shoppingCategories := shopping.Group("/categories")
	shoppingCategories.GET("", shoppingHandler.GetShoppingCategories)
	shoppingCategories.POST("", shoppingHandler.CreateShoppingCategory)
	shoppingCategories.PUT("/:id", shoppingHandler.UpdateShoppingCategory)
	shoppingCategories.DELETE("/:id", shoppingHandler.DeleteShoppingCategory)

	products := shopping.Group("/products")
	products.GET("", shoppingHandler.GetProducts)
	products.POST("", shoppingHandler.CreateProduct)
	products.PUT("/:id", shoppingHandler.UpdateProduct)
	products.DELETE("/:id", shoppingHandler.DeleteProduct)

	lists := shopping.Group("/lists")
	lists.GET("", shoppingHandler.GetLists)
	lists.POST("", shoppingHandler.CreateList)
	lists.GET("/:id", shoppingHandler.GetListByID)
	lists.PUT("/:id", shoppingHandler.UpdateList)
	lists.DELETE("/:id", shoppingHandler.DeleteList)
	lists.PUT("/:id/complete", shoppingHandler.CompleteList)

	items := shopping.Group("/lists/:id/items")
	items.POST("", shoppingHandler.AddItems)
	items.PUT("/:itemId", shoppingHandler.UpdateItem)
	items.DELETE("/:itemId", shoppingHandler.DeleteItem)

	shopping.POST("/cleanup-transactions", shoppingHandler.CleanupTransactions)

	log.Infof("Starting MeuBolso backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
