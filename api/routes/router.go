// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"epicly/internal/auth"
	"epicly/internal/bookings"
	"epicly/internal/catalog"
	"epicly/internal/inventory"
	"epicly/internal/notifications"
	"epicly/internal/shared/config"
	"epicly/internal/shared/database"
	"epicly/internal/shared/middleware"
	"epicly/pkg/cache"
	"epicly/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config      *config.Config
	db          *database.DB
	rateLimiter *ratelimit.RateLimiter

	cacheService     cache.Service
	catalogRepo      catalog.Repository
	inventoryService inventory.Service
	inventoryRepo    inventory.Repository
	bookingService   bookings.Service
	settlement       bookings.SettlementService
	sweeper          *inventory.Sweeper
}

// NewRouter creates a new router instance and wires the service graph.
// The lifecycle adapter may be nil (Kafka disabled); services treat a
// missing publisher as a no-op.
func NewRouter(cfg *config.Config, db *database.DB, rateLimiter *ratelimit.RateLimiter, adapter *notifications.LifecycleAdapter) *Router {
	r := &Router{
		config:      cfg,
		db:          db,
		rateLimiter: rateLimiter,
	}

	r.cacheService = cache.NewService(db.GetRedisClient())
	r.catalogRepo = catalog.NewRepository(db.GetPostgreSQL())

	r.inventoryRepo = inventory.NewRepository(db.GetPostgreSQL())
	r.inventoryService = inventory.NewService(r.inventoryRepo, r.catalogRepo, cfg, r.cacheService)

	var publisher bookings.LifecyclePublisher
	var notifier inventory.ExpiryNotifier
	if adapter != nil {
		publisher = adapter
		notifier = adapter
	}

	bookingRepo := bookings.NewRepository(db.GetPostgreSQL())
	r.settlement = bookings.NewSettlementService(bookingRepo, r.inventoryService, publisher, cfg)
	gateway := bookings.NewGateway(cfg)
	r.bookingService = bookings.NewService(bookingRepo, r.catalogRepo, r.inventoryService, r.settlement, gateway, publisher, cfg)

	r.sweeper = inventory.NewSweeper(r.inventoryRepo, r.inventoryService, cfg, notifier, r.settlement)

	return r
}

// Sweeper returns the hold sweeper for lifecycle management in main.
func (r *Router) Sweeper() *inventory.Sweeper {
	return r.sweeper
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupCatalogRoutes(api)
		r.setupInventoryRoutes(api)
		r.setupBookingRoutes(api)
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
				"service":   "epicly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "epicly-backend",
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

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)
}

// setupCatalogRoutes configures the public event/schedule browsing routes
func (r *Router) setupCatalogRoutes(rg *gin.RouterGroup) {
	catalogService := catalog.NewService(r.catalogRepo, r.cacheService)
	catalogController := catalog.NewController(catalogService)

	catalog.SetupCatalogRoutes(rg, catalogController)
}

// setupInventoryRoutes configures seat listing and hold placement
func (r *Router) setupInventoryRoutes(rg *gin.RouterGroup) {
	inventoryController := inventory.NewController(r.inventoryService)

	inventory.SetupInventoryRoutes(rg, inventoryController, r.criticalLimiter())
}

// setupBookingRoutes configures booking and payment routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingController := bookings.NewController(r.bookingService)
	authMiddleware := middleware.JWTAuthWithConfig(r.config)

	bookings.SetupBookingRoutes(rg, bookingController, authMiddleware, r.criticalLimiter())
}

func (r *Router) criticalLimiter() gin.HandlerFunc {
	if r.rateLimiter == nil {
		return nil
	}
	return ratelimit.CriticalMiddleware(r.rateLimiter)
}
