// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"bookmyticket/internal/bookings"
	"bookmyticket/internal/catalog"
	"bookmyticket/internal/holds"
	"bookmyticket/internal/notifications"
	"bookmyticket/internal/payments"
	"bookmyticket/internal/pricing"
	"bookmyticket/internal/reservations"
	"bookmyticket/internal/shared/config"
	"bookmyticket/internal/shared/database"
	"bookmyticket/internal/wallet"
	"bookmyticket/pkg/cache"
	"bookmyticket/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	ledger   holds.Ledger
	producer notifications.Producer

	// Shared services, wired once and injected across features
	cacheService       cache.Service
	catalogService     catalog.Service
	reservationService reservations.Service
	walletService      wallet.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, ledger holds.Ledger, producer notifications.Producer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		ledger:   ledger,
		producer: producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.registerValidators()

	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	r.cacheService = cache.NewService(r.db.GetRedisClient())

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Catalog first: reservations and bookings depend on it
		r.setupCatalogRoutes(api)
		r.setupReservationRoutes(api)
		r.setupWalletRoutes(api)
		r.setupBookingRoutes(api)
	}
}

func (r *Router) registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := catalog.RegisterValidators(v); err != nil {
			logger.GetDefault().Error("Failed to register catalog validators")
		}
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "bookmyticket-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "bookmyticket-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupCatalogRoutes configures catalog browsing and item management
func (r *Router) setupCatalogRoutes(rg *gin.RouterGroup) {
	catalogRepo := catalog.NewRepository(r.db.GetPostgreSQL())
	r.catalogService = catalog.NewService(catalogRepo, r.ledger, r.cacheService)
	catalogController := catalog.NewController(r.catalogService)

	catalog.SetupCatalogRoutes(rg, catalogController)
}

// setupReservationRoutes configures the hold and cart lifecycle
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	r.reservationService = reservations.NewService(
		r.ledger,
		r.catalogService,
		reservations.Config{
			HoldTTL:    r.config.Holds.TTL,
			PricingCfg: pricingConfig(r.config),
		},
		nil,
		logger.GetDefault(),
	)
	reservationController := reservations.NewController(r.reservationService)

	reservations.SetupReservationRoutes(rg, reservationController)
}

func pricingConfig(cfg *config.Config) pricing.Config {
	return pricing.Config{
		PlatformFeePercent: cfg.Pricing.PlatformFeePercent,
		HandlingFeePerItem: cfg.Pricing.HandlingFeePerItem,
		TaxPercent:         cfg.Pricing.TaxPercent,
	}
}

// setupWalletRoutes configures organizer wallet routes
func (r *Router) setupWalletRoutes(rg *gin.RouterGroup) {
	walletRepo := wallet.NewRepository(r.db.GetPostgreSQL())
	r.walletService = wallet.NewService(walletRepo)
	walletController := wallet.NewController(r.walletService)

	wallet.SetupWalletRoutes(rg, walletController)
}

// setupBookingRoutes configures booking finalization and refunds
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	bookingService := bookings.NewService(
		bookingRepo,
		r.reservationService,
		r.ledger,
		r.walletService,
		payments.NewMockGateway(),
		r.producer,
		logger.GetDefault(),
	)
	bookingController := bookings.NewController(bookingService)

	bookings.SetupBookingRoutes(rg, bookingController)
}
