package main

import (
	"fmt"
	"net/http"
	"os"

	"stockfolio/internal/config"
	"stockfolio/internal/database"
	"stockfolio/internal/handlers"
	"stockfolio/internal/ledger"
	"stockfolio/internal/logger"
	"stockfolio/internal/middleware"
	"stockfolio/internal/quotes"
	"stockfolio/internal/services"
	"stockfolio/internal/validator"

	"github.com/gin-gonic/gin"
)

// @title           Stockfolio API
// @version         1.0
// @description     Stockfolio tracks a single stock portfolio: a persisted buy/sell lot ledger with live quotes and point-in-time valuation.

// @host      localhost:8080
// @BasePath  /api/v1

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
	if appConfig.AlphaVantageKey == "" {
		log.Warn("ALPHA_VANTAGE_API_KEY is not set; quote requests will fail")
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	quoteClient := quotes.NewAlphaVantage(appConfig)
	lotStore := ledger.NewStore(db)
	portfolioService := services.NewPortfolioService(lotStore, quoteClient)
	stockService := services.NewStockService(db, quoteClient)

	// Initialize handlers
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	stockHandler := handlers.NewStockHandler(stockService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

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

	// Portfolio routes
	portfolio := v1.Group("/portfolio")
	portfolio.GET("", portfolioHandler.GetPortfolio)
	portfolio.GET("/value", portfolioHandler.GetPortfolioValue)
	portfolio.GET("/lots", portfolioHandler.ListLots)
	portfolio.POST("/buy", portfolioHandler.Buy)
	portfolio.POST("/sell", portfolioHandler.Sell)

	// Stock routes
	stocks := v1.Group("/stocks")
	stocks.GET("/:symbol", stockHandler.GetStockInfo)
	stocks.GET("/:symbol/company", stockHandler.GetCompanyInfo)
	stocks.GET("/:symbol/history", stockHandler.GetHistory)

	log.Infof("Starting Stockfolio backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
