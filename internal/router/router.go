package router

import (
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/config"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/handler"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/infra"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/middleware"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/service"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps exposes the wired components main needs beyond the HTTP engine:
// the job dispatcher, the run handler for the worker pool, and the store
// repository for the optional scheduler.
type Deps struct {
	Dispatcher *worker.Dispatcher
	RunWorker  *worker.RunWorker
	Stores     repository.StoreRepository
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, commerceCB *infra.CircuitBreaker) (*gin.Engine, *Deps) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	commerceClient := infra.NewCommerceClient(cfg.CommerceAPIVersion, time.Duration(cfg.CommerceTimeoutSecs)*time.Second)
	pushQueue := infra.NewPushQueue(time.Duration(cfg.PushMinIntervalMS) * time.Millisecond)

	// ── Repositories ─────────────────────────────────────────────────────────
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	configRepo := repository.NewPricingConfigRepository(db)
	historyRepo := repository.NewPricingHistoryRepository(db)
	runRepo := repository.NewAlgorithmRunRepository(db)
	eventRepo := repository.NewProcessedEventRepository(db)
	revenueRepo := repository.NewRevenueRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	pusher := service.NewThrottledPusher(storeRepo, pushQueue, commerceCB, commerceClient)
	revenueSvc := service.NewRevenueService(revenueRepo)
	mutationSvc := service.NewMutationService(variantRepo, configRepo, historyRepo, pusher)
	toggleSvc := service.NewToggleService(variantRepo, configRepo, historyRepo, pusher, cfg.ActivationBumpPercent)
	configSvc := service.NewConfigService(variantRepo, configRepo, toggleSvc)
	webhookSvc := service.NewWebhookService(storeRepo, productRepo, variantRepo, configRepo, historyRepo, eventRepo, cfg.ManualEditCooldownHrs)
	runSvc := service.NewRunService(configRepo, runRepo, revenueSvc, mutationSvc, cfg.RunParallelism)

	// Worker dispatcher — injected into handlers that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	pricingH := handler.NewPricingHandler(configSvc, toggleSvc, historyRepo)
	webhookH := handler.NewWebhookHandler(webhookSvc)
	runsH := handler.NewRunsHandler(runSvc, dispatcher)
	revenueH := handler.NewRevenueHandler(revenueRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, commerceCB))

	v1 := r.Group("/v1")
	{
		variants := v1.Group("/variants")
		{
			variants.GET("/:id/pricing", pricingH.GetConfig)
			variants.PATCH("/:id/pricing", pricingH.UpdateConfig)
			variants.GET("/:id/pricing/history", pricingH.ListHistory)
		}

		products := v1.Group("/products")
		{
			products.POST("/:id/pricing/enable", pricingH.ToggleProduct(true))
			products.POST("/:id/pricing/disable", pricingH.ToggleProduct(false))
		}

		stores := v1.Group("/stores")
		{
			stores.POST("/:id/pricing/enable", pricingH.ToggleStore(true))
			stores.POST("/:id/pricing/disable", pricingH.ToggleStore(false))
			stores.GET("/:id/runs", runsH.ListByStore)
		}

		v1.POST("/pricing/undo", pricingH.Undo)
		v1.POST("/runs", runsH.Trigger)
		v1.POST("/revenue", revenueH.Upsert)
		v1.POST("/webhooks/products/update", webhookH.ProductUpdate)
	}

	deps := &Deps{
		Dispatcher: dispatcher,
		RunWorker:  worker.NewRunWorker(runSvc),
		Stores:     storeRepo,
	}
	return r, deps
}
