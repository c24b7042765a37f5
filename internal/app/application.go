package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront-backend/internal/backend"
	"storefront-backend/internal/background"
	"storefront-backend/internal/config"
	"storefront-backend/internal/handlers"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/service"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"
)

type Application struct {
	cfg *config.Config

	backend backend.Backend
	cache   *cache.Cache
	metrics *metrics.ServerMetrics

	repositories repositoryContainer
	services     serviceContainer
	handlers     handlerContainer

	rateLimits *middleware.RateLimitManager
	scheduler  *background.Scheduler
	router     *gin.Engine
	server     *http.Server
}

type repositoryContainer struct {
	Cart     repository.CartRepository
	Snapshot repository.SnapshotRepository
}

type serviceContainer struct {
	Catalog   *service.CatalogService
	Cart      *service.CartService
	Checkout  *service.CheckoutService
	Reconcile *service.ReconcileService
	Order     *service.OrderService
	Admin     *service.AdminService
	Profile   *service.ProfileService
}

type handlerContainer struct {
	Catalog  *handlers.CatalogHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Order    *handlers.OrderHandler
	Admin    *handlers.AdminHandler
	Profile  *handlers.ProfileHandler
}

func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend url is required")
	}

	app := &Application{
		cfg:     cfg,
		backend: backend.NewClient(cfg.BackendURL, cfg.BackendTimeout),
	}

	if err := app.initCache(); err != nil {
		return nil, err
	}

	app.initRepositories()
	app.initServices()
	app.initHandlers()
	app.initRouter()
	app.initScheduler()

	app.server = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        app.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

func (a *Application) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
		"backend_url": a.cfg.BackendURL,
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if a.rateLimits != nil {
		a.rateLimits.Stop()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	return nil
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) initCache() error {
	enable := a.cfg.EnableCache && a.cfg.EnableRedis

	c, err := cache.NewCache(a.cfg.RedisURL, enable)
	if err != nil {
		// A dead redis should not keep the storefront down; everything
		// falls back to direct backend reads.
		logger.Warn("Cache unavailable, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
		c, _ = cache.NewCache("", false)
	}

	a.cache = c
	return nil
}

func (a *Application) initRepositories() {
	a.repositories.Cart = repository.NewMemoryCartRepository()

	if a.cfg.EnableCache && a.cfg.EnableRedis {
		a.repositories.Snapshot = repository.NewCacheSnapshotRepository(a.cache)
	} else {
		a.repositories.Snapshot = repository.NewMemorySnapshotRepository()
	}
}

func (a *Application) initServices() {
	a.services.Catalog = service.NewCatalogService(a.backend, a.cache)
	a.services.Cart = service.NewCartService(a.repositories.Cart)
	a.services.Checkout = service.NewCheckoutService(a.backend, a.services.Cart, a.repositories.Snapshot, a.cache, a.cfg)
	a.services.Reconcile = service.NewReconcileService(a.backend, a.services.Cart, a.repositories.Snapshot, a.cache)
	a.services.Order = service.NewOrderService(a.backend, a.services.Catalog, a.cache)
	a.services.Admin = service.NewAdminService(a.backend, a.services.Catalog, a.cache)
	a.services.Profile = service.NewProfileService(a.backend, a.cache)
}

func (a *Application) initHandlers() {
	a.handlers.Catalog = handlers.NewCatalogHandler(a.services.Catalog)
	a.handlers.Cart = handlers.NewCartHandler(a.services.Cart, a.services.Catalog)
	a.handlers.Checkout = handlers.NewCheckoutHandler(a.services.Checkout, a.services.Reconcile)
	a.handlers.Order = handlers.NewOrderHandler(a.services.Order)
	a.handlers.Admin = handlers.NewAdminHandler(a.services.Admin, a.cfg)
	a.handlers.Profile = handlers.NewProfileHandler(a.services.Profile)
}

func (a *Application) initRouter() {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger())
	router.Use(middleware.RequestIDMiddleware())

	if a.cfg.EnableMetrics {
		a.metrics = metrics.NewServerMetrics("api")
		router.Use(middleware.MetricsMiddleware(a.metrics))
	}

	a.rateLimits = middleware.NewRateLimitManager(context.Background())
	router.Use(middleware.RateLimitMiddleware(a.rateLimits, a.cfg.RateLimitRequests, a.cfg.RateLimitWindow))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.SessionMiddleware(a.cfg.IsProduction()))
	router.Use(middleware.IdentityMiddleware(a.cfg.JWTSecret))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Browser-level return paths. The hosted payment provider redirects
	// here, so they live at the root rather than under /api/v1.
	router.GET("/", a.handlers.Catalog.GetAll)
	router.GET("/payment-success", middleware.RequireAuth(), a.handlers.Checkout.PaymentSuccess)
	router.GET("/payment-failure", a.handlers.Checkout.PaymentFailure)
	router.GET("/admin", middleware.RequireAuth(), a.handlers.Admin.GetOverview)

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		{
			public.GET("/products", a.handlers.Catalog.GetAll)
			public.GET("/products/:id", a.handlers.Catalog.GetByID)
			public.GET("/categories", a.handlers.Catalog.GetCategories)

			public.GET("/cart", a.handlers.Cart.Get)
			public.POST("/cart/items", a.handlers.Cart.Add)
			public.PUT("/cart/items/:id", a.handlers.Cart.SetQuantity)
			public.DELETE("/cart/items/:id", a.handlers.Cart.Remove)
			public.DELETE("/cart", a.handlers.Cart.Clear)

			public.GET("/payments/status", a.handlers.Admin.GetPaymentStatus)
		}

		protected := v1.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.POST("/checkout", a.handlers.Checkout.Checkout)
			protected.GET("/checkout/success", a.handlers.Checkout.PaymentSuccess)
			protected.GET("/checkout/failure", a.handlers.Checkout.PaymentFailure)

			protected.GET("/orders", a.handlers.Order.GetAll)
			protected.GET("/orders/:id", a.handlers.Order.GetByID)

			protected.GET("/profile", a.handlers.Profile.Get)
			protected.PUT("/profile", a.handlers.Profile.Save)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAuth())
		{
			admin.POST("/products", a.handlers.Admin.AddProduct)
			admin.PUT("/products/:id", a.handlers.Admin.UpdateProduct)
			admin.DELETE("/products/:id", a.handlers.Admin.DeleteProduct)
			admin.POST("/products/:id/decrease-stock", a.handlers.Admin.DecreaseStock)
			admin.POST("/products/:id/restock", a.handlers.Admin.RestockProduct)

			admin.GET("/payments/default-countries", a.handlers.Admin.GetDefaultCountries)
			admin.PUT("/payments/configuration", a.handlers.Admin.SetStripeConfiguration)
			admin.POST("/roles", a.handlers.Admin.AssignRole)
		}
	}

	a.router = router
}

func (a *Application) initScheduler() {
	a.scheduler = background.NewScheduler()

	if memorySnapshots, ok := a.repositories.Snapshot.(*repository.MemorySnapshotRepository); ok {
		a.scheduler.Register(background.Job{
			Name:     "snapshot_eviction",
			Interval: time.Hour,
			Timeout:  time.Minute,
			Run: func(ctx context.Context) error {
				if evicted := memorySnapshots.EvictExpired(); evicted > 0 {
					logger.Info("Evicted expired cart snapshots", map[string]interface{}{"count": evicted})
				}
				return nil
			},
		})
	}

	a.scheduler.Register(background.Job{
		Name:     "reconcile_state_eviction",
		Interval: time.Hour,
		Timeout:  time.Minute,
		Run: func(ctx context.Context) error {
			a.services.Reconcile.EvictStale(48 * time.Hour)
			return nil
		},
	})

	a.scheduler.Start(context.Background())
}
