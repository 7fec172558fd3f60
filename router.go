package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/controllers"
	"github.com/soilq/soilq-api/middleware"
)

// Scope required to move orders through fulfilment
const scopeUpdateOrders = "update:orders"

func setupRouter(cfg *config.Config, limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		v1.GET("/products", controllers.GetProducts)
		v1.GET("/products/:id", controllers.GetProduct)
		v1.GET("/uploads/:filename", controllers.GetUploadedReport)
	}

	protected := v1.Group("")
	protected.Use(middleware.EnsureValidToken(cfg))
	{
		protected.POST("/users", controllers.CreateUser)
		protected.GET("/users/me", controllers.GetMyProfile)
		protected.PUT("/users/me", controllers.UpdateMyProfile)

		protected.POST("/soil-analyses/assess", controllers.AssessSoil)
		protected.POST("/soil-analyses", controllers.CreateSoilAnalysis)
		protected.GET("/soil-analyses", controllers.GetSoilAnalyses)
		protected.GET("/soil-analyses/export", controllers.ExportSoilAnalyses)
		protected.GET("/soil-analyses/:id", controllers.GetSoilAnalysis)
		protected.PUT("/soil-analyses/:id", controllers.UpdateSoilAnalysis)
		protected.DELETE("/soil-analyses/:id", controllers.DeleteSoilAnalysis)

		protected.POST("/reports", controllers.UploadReport)
		protected.GET("/reports/:id", controllers.GetReport)

		protected.GET("/cart", controllers.GetCart)
		protected.DELETE("/cart/session", controllers.EndCartSession)
		protected.POST("/cart/items", controllers.AddCartItem)
		protected.DELETE("/cart/items", controllers.ClearCart)
		protected.PUT("/cart/items/:productId", controllers.UpdateCartItem)
		protected.DELETE("/cart/items/:productId", controllers.RemoveCartItem)
		protected.PUT("/cart/sidebar", controllers.SetCartSidebar)

		protected.POST("/orders", controllers.CreateOrder)
		protected.POST("/orders/checkout", controllers.Checkout)
		protected.GET("/orders", controllers.GetOrders)
		protected.GET("/orders/:id", controllers.GetOrder)
		protected.PUT("/orders/:id/status", middleware.RequireScope(scopeUpdateOrders), controllers.UpdateOrderStatus)
		protected.PUT("/orders/:id/cancel", controllers.CancelOrder)

		protected.POST("/payments/process", limiter.Middleware(), controllers.ProcessPayment)
		protected.GET("/payments", controllers.GetPayments)
		protected.GET("/payments/:id", controllers.GetPayment)
		protected.POST("/payments/:id/refund", controllers.RefundPayment)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "SoilQ API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not initialized",
			},
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
