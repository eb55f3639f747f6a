package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/mongodb"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/apidocs"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//	@title			Storefront API
//	@version		1.0
//	@description	Catalog, checkout and PayPal payment backend of the storefront.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// store is the repository set of the configured database
type store struct {
	products catalog.ProductRepository
	users    identity.UserRepository
	orders   trade.OrderRepository
	pinger   handler.Pinger
	close    func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telCfg := telemetry.ConfigFrom(cfg.Telemetry)

	tp, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if lp.IsEnabled() {
		// rebuild the logger so every entry is also exported over OTLP
		bridged, err := logger.New(logCfg, lp.ZapCore(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			log.Fatal("Failed to attach OTLP log bridge", zap.Error(err))
		}
		log = bridged
	}

	profiler, err := telemetry.NewProfiler(cfg.Telemetry.Profiling, cfg.Telemetry.ServiceName, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tp.EnableSpanProfiles()
	}

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("tracing", tp.IsEnabled()),
		zap.Bool("metrics", mp.IsEnabled()),
	)

	meter := mp.Meter("storefront")

	db, err := openStore(ctx, cfg, log, meter)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if rdb != nil {
		blacklist = auth.NewRedisTokenBlacklist(rdb)
	}
	idempotency := cache.NewIdempotencyStore(rdb, log)

	eventBus := event.NewInMemoryEventBus(log)

	var productOpts []catalogapp.ProductServiceOption
	productOpts = append(productOpts, catalogapp.WithEventPublisher(eventBus))
	if cfg.Storage.Enabled {
		images, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := images.EnsureBucket(ctx); err != nil {
			log.Warn("Object storage bucket check failed", zap.String("bucket", images.Bucket()), zap.Error(err))
		}
		productOpts = append(productOpts, catalogapp.WithImageStorage(images))
	}
	productService := catalogapp.NewProductService(db.products, log, productOpts...)

	businessMetrics, err := telemetry.NewStorefrontMetrics(meter, cfg.PayPal.Currency, log)
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}
	stockHandler := event.NewIdempotentHandler(catalogapp.NewOrderPaidStockHandler(productService, log), idempotency, log)
	eventBus.Subscribe(stockHandler)
	eventBus.Subscribe(businessMetrics)
	log.Info("Event handlers registered",
		zap.Strings("stock_events", stockHandler.EventTypes()),
		zap.Strings("metrics_events", businessMetrics.EventTypes()),
	)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	orderOpts := []tradeapp.OrderServiceOption{tradeapp.WithPaymentRejectionRecorder(businessMetrics)}
	pricer, err := tradeapp.NewDisplayPricer(cfg.Display.Currency, decimal.NewFromFloat(cfg.Display.Rate), language.English)
	if err != nil {
		log.Fatal("Invalid display currency", zap.Error(err), zap.String("currency", cfg.Display.Currency))
	}
	orderOpts = append(orderOpts, tradeapp.WithDisplayPricer(pricer))
	if cfg.PayPal.ClientSecret != "" {
		paypal, err := payment.NewPayPalAdapter(payment.PayPalConfigFromApp(cfg.PayPal))
		if err != nil {
			log.Fatal("Failed to initialize PayPal adapter", zap.Error(err))
		}
		orderOpts = append(orderOpts, tradeapp.WithCaptureVerifier(paypal))
		log.Info("PayPal capture verification enabled", zap.String("mode", cfg.PayPal.Mode))
	} else {
		log.Warn("PayPal client secret not set; client-reported captures are trusted")
	}
	orderService := tradeapp.NewOrderService(db.orders, db.products, db.users, idempotency, eventBus, log, orderOpts...)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(db.users, jwtService, blacklist, eventBus, log)
	userService := identityapp.NewUserService(db.users, blacklist, eventBus, cfg.JWT.RefreshTokenExpiration, log)

	handlers := router.Handlers{
		Product: handler.NewProductHandler(productService, cfg.Storage.MaxUploadSize),
		Order:   handler.NewOrderHandler(orderService),
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(userService),
		Config:  handler.NewConfigHandler(cfg.PayPal.ClientID, cfg.PayPal.Currency),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics := middleware.NewHTTPMetrics()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	secCfg := middleware.DefaultSecurityConfig()
	secCfg.HSTSEnabled = cfg.App.IsProduction()

	// Middleware order:
	// 1. RequestID so every later log line and error carries it
	// 2. request logging and panic recovery
	// 3. tracing, metrics and profiling labels
	// 4. CORS and security headers
	// 5. rate limiting
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Tracing(cfg.Telemetry.ServiceName),
		middleware.SpanEnricher(),
		httpMetrics.Middleware(),
		middleware.Profiling(profiler.IsEnabled()),
		middleware.CORSWithConfig(corsCfg),
		middleware.Secure(secCfg),
	)

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	checks := map[string]handler.Pinger{"database": db.pinger}
	if rdb != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	engine.GET("/health", handler.NewSystemHandler(checks).Health)
	engine.GET("/metrics", httpMetrics.Handler())

	jwtAuth := middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	apidocs.Mount(engine, middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     cfg.Swagger.Enabled,
		RequireAuth: cfg.Swagger.RequireAuth,
		AllowedIPs:  cfg.Swagger.AllowedIPs,
	}, jwtAuth))
	if cfg.Swagger.Enabled {
		log.Info("API docs enabled", zap.String("spec", apidocs.SpecPath), zap.Bool("require_auth", cfg.Swagger.RequireAuth))
	}

	guards := router.Guards{
		Auth:      jwtAuth,
		Admin:     middleware.RequireAdmin(),
		BodyLimit: middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		// multipart framing on top of the image itself
		UploadBodyLimit: middleware.BodyLimit(cfg.Storage.MaxUploadSize + 1<<20),
		ImageUploads:    productService.ImageUploadsEnabled(),
	}
	router.NewRouter(engine).Register(router.StorefrontGroups(handlers, guards)...).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if limiter != nil {
		limiter.Close()
	}
	if err := idempotency.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}
	if err := db.close(shutdownCtx); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
	_ = logger.Sync(log)
}

// openStore connects the configured database and builds its repositories
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, meter metric.Meter) (*store, error) {
	if cfg.Database.Driver == config.DriverMongoDB {
		client, err := mongodb.Connect(ctx, &cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		mdb := client.Database()
		return &store{
			products: mongodb.NewProductRepository(mdb),
			users:    mongodb.NewUserRepository(mdb),
			orders:   mongodb.NewOrderRepository(mdb),
			pinger:   client,
			close:    client.Close,
		}, nil
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThresh))
	plugins := telemetry.GormTracingPlugins(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Database.SlowQueryThresh,
		DBName:          cfg.Database.Driver,
	})
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithGormLogger(gormLog),
		persistence.WithPlugins(plugins...),
	)
	if err != nil {
		return nil, err
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	// postgres is migrated by cmd/migrate; sqlite has no migration set
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := telemetry.RegisterDBPoolMetrics(meter, func() sql.DBStats { return sqlDB.Stats() }); err != nil {
		log.Warn("Failed to register database pool metrics", zap.Error(err))
	}

	return &store{
		products: persistence.NewGormProductRepository(db.DB),
		users:    persistence.NewGormUserRepository(db.DB),
		orders:   persistence.NewGormOrderRepository(db.DB),
		pinger:   db,
		close:    func(context.Context) error { return db.Close() },
	}, nil
}
