package main

import (
	"context"
	"log"
	"time"

	"catalog-gateway/internal/config"
	"catalog-gateway/internal/controller"
	"catalog-gateway/internal/database"
	"catalog-gateway/internal/metadata"
	"catalog-gateway/internal/middleware"
	"catalog-gateway/internal/model"
	"catalog-gateway/internal/repository"
	"catalog-gateway/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize metastore connection
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Auto migrate metastore schema
	if err := db.AutoMigrate(
		&model.DataSource{},
		&model.TableCacheVersion{},
		&model.TableCache{},
		&model.PinnedTable{},
	); err != nil {
		log.Printf("Warning: Database migration failed: %v", err)
		log.Println("Continuing with existing database schema...")
	}

	// Initialize repositories
	datasourceRepo := repository.NewDataSourceRepository(db)
	catalogRepo := repository.NewCatalogCacheRepository(db)
	pinRepo := repository.NewPinRepository(db)

	// Initialize infrastructure
	connPool := database.NewConnectionPool()
	defer connPool.CloseAll()

	// Initialize metrics
	middleware.InitMetrics()

	// Initialize rate limiting
	rateLimitConfig := middleware.RateLimiterConfig{
		RPM:             cfg.Security.RateLimitPerMinute,
		Burst:           cfg.Security.RateLimitBurst,
		CleanupInterval: 5 * time.Minute,
	}
	rateLimiter := middleware.NewRateLimiter(rateLimitConfig)

	// Background lifecycle for caches and collectors
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	columnCache := metadata.NewColumnCache(cfg.Cache.ColumnCacheTTL)
	go columnCache.Start(ctx)

	syncStats := service.NewSyncStatsCollector(24 * time.Hour)
	go syncStats.StartCleanupRoutine(ctx)

	// Initialize services
	datasourceService := service.NewDataSourceService(datasourceRepo)

	syncService := service.NewCatalogSyncService(catalogRepo, cfg.Cache.SyncBatchSize, cfg.Cache.SyncStaleAfter)
	syncService.SetStatsCollector(syncStats)

	tableService := service.NewTableService(datasourceRepo, catalogRepo, pinRepo, syncService, connPool, columnCache, nil)

	// Initialize controllers
	datasourceController := controller.NewDataSourceController(datasourceService)
	tableController := controller.NewTableController(tableService)
	databaseController := controller.NewDatabaseController(database.GetDriverRegistry(), connPool)
	statsController := controller.NewCatalogStatsController(syncStats)
	healthController := controller.NewHealthController(db)

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Cors())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.PrometheusMiddleware())

	// Add rate limiting if enabled
	if cfg.Security.EnableRateLimit {
		router.Use(rateLimiter.RateLimit())
	}

	// Health and metrics endpoints (always available)
	router.GET("/health", healthController.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 group
	api := router.Group("/api/v1")
	{
		api.GET("/health", healthController.HealthCheck)

		// Data source endpoints
		datasources := api.Group("/datasources")
		{
			datasources.POST("", datasourceController.CreateDataSource)
			datasources.GET("", datasourceController.ListDataSources)
			datasources.GET("/stats", datasourceController.GetDataSourceStats)
			datasources.GET("/:id", datasourceController.GetDataSource)
			datasources.PUT("/:id", datasourceController.UpdateDataSource)
			datasources.DELETE("/:id", datasourceController.DeleteDataSource)
			datasources.POST("/:id/activate", datasourceController.ActivateDataSource)
			datasources.POST("/:id/deactivate", datasourceController.DeactivateDataSource)
		}

		// Table catalog endpoints
		tables := api.Group("/tables")
		{
			tables.GET("", tableController.PageQueryTables)
			tables.DELETE("", tableController.DropTable)
			tables.GET("/detail", tableController.QueryTable)
			tables.GET("/ddl", tableController.ShowCreateTable)
			tables.GET("/columns", tableController.QueryColumns)
			tables.GET("/indexes", tableController.QueryIndexes)
			tables.GET("/types", tableController.QueryTypes)
			tables.GET("/meta", tableController.QueryTableMeta)
			tables.POST("/build-sql", tableController.BuildSql)
			tables.GET("/create-example", tableController.CreateTableExample)
			tables.GET("/alter-example", tableController.AlterTableExample)
			tables.POST("/pin", tableController.PinTable)
			tables.DELETE("/pin", tableController.UnpinTable)
		}

		// Catalog sync statistics
		catalog := api.Group("/catalog")
		{
			catalog.GET("/stats", statsController.GetSummary)
			catalog.GET("/stats/:scopeKey", statsController.GetScopeStats)
		}

		// Database management endpoints
		databases := api.Group("/database")
		{
			databases.GET("/types", databaseController.GetDatabaseTypes)
			databases.POST("/test-connection", databaseController.TestDataSourceConnection)
			databases.GET("/connections/stats", databaseController.GetConnectionStats)
			databases.GET("/health", databaseController.GetDatabaseHealth)
		}
	}

	// Start server
	log.Printf("Starting server on port %s", cfg.Server.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Server.Port)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
