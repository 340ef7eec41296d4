// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/horizonglow/marketplace-backend/internal/config"
	"github.com/horizonglow/marketplace-backend/internal/handlers"
	"github.com/horizonglow/marketplace-backend/internal/middleware"
	"github.com/horizonglow/marketplace-backend/internal/payments"
	"github.com/horizonglow/marketplace-backend/internal/services"
	"github.com/horizonglow/marketplace-backend/internal/storage"
	"github.com/horizonglow/marketplace-backend/internal/utils"
)

// Initialize wires the HTTP surface. The storage backend comes from the
// composition root so every consumer (uploads, downloads, the retention
// pruner) talks to the same store.
func Initialize(db *gorm.DB, cfg *config.Config, backend storage.Backend) *gin.Engine {
	gateway := payments.NewClient(cfg.Payment.APIBaseURL, cfg.Payment.APIKey)
	limits := middleware.NewRateLimiters(cfg.RateLimit)

	// Initialize services
	fileService := services.NewProductFileService(db, backend)
	sellerService := services.NewSellerService(db)
	productService := services.NewProductService(db, fileService, sellerService,
		time.Duration(cfg.Files.SupportPeriodHours)*time.Hour)
	purchaseService := services.NewPurchaseService(db, fileService, sellerService)
	authService := services.NewAuthService(db, cfg)
	paymentService := services.NewPaymentService(db, gateway, cfg.Payment, cfg.Server.BaseURL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, fileService, purchaseService)
	sellerHandler := handlers.NewSellerHandler(sellerService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, authService, cfg.Payment.IPNSecretKey)
	supportHandler := handlers.NewSupportHandler(productService)
	contentHandler := handlers.NewContentHandler(db)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(limits.General.Middleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(limits.Auth.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Product catalog routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/categories", productHandler.GetCategories)
			products.GET("/:id", productHandler.GetProduct)

			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", productHandler.CreateProduct)
				protected.DELETE("/:id", productHandler.DeleteProduct)
				protected.POST("/:id/buy", productHandler.BuyProduct)
				protected.GET("/:id/file", productHandler.DownloadFile)
				protected.PUT("/:id/file", limits.Upload.Middleware(), productHandler.UploadFile)
			}
		}

		// Seller routes
		seller := v1.Group("/seller")
		seller.Use(middleware.AuthRequired())
		{
			seller.GET("/stats", sellerHandler.GetStats)
		}

		// Payment routes
		paymentGroup := v1.Group("/payments")
		{
			paymentGroup.GET("/info", paymentHandler.GetPaymentInfo)
			paymentGroup.POST("/topup", middleware.AuthRequired(), paymentHandler.RequestTopup)
			// Gateway callback; authenticated by HMAC signature, not JWT.
			paymentGroup.POST("/ipn", paymentHandler.HandleIPN)
		}

		// Content store
		v1.GET("/content/:key", contentHandler.GetEntry)

		// Support bot routes
		support := v1.Group("/support")
		support.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			support.GET("/products/:code", supportHandler.GetProductByCode)
		}
	}

	return r
}
