package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"suidoc/docs"
	"suidoc/internal/auth"
	"suidoc/internal/chain"
	"suidoc/internal/config"
	"suidoc/internal/database"
	"suidoc/internal/database/migration"
	"suidoc/internal/encryption"
	handlers "suidoc/internal/http/handler"
	"suidoc/internal/http/middleware"
	"suidoc/internal/httpx"
	"suidoc/internal/logger"
	"suidoc/internal/metrics"
	"suidoc/internal/otel"
	"suidoc/internal/repository/postgres"
	"suidoc/internal/service"
	"suidoc/internal/storage"
	"suidoc/internal/sui"
	"suidoc/internal/walrus"
	"suidoc/internal/wallet"
)

// @title SuiDoc API
// @version 1.0
// @description Encrypted document signing on Sui and Walrus.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	if err := cfg.Validate(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			zapLogger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, zapLogger, cfg.Database.Host); err != nil {
		zapLogger.Fatal("database migration failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics, err := metrics.New(reg)
	if err != nil {
		zapLogger.Fatal("failed to register metrics", zap.Error(err))
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		zapLogger.Fatal("failed to register http metrics", zap.Error(err))
	}

	relayer, err := wallet.ParseKeystoreEntry(cfg.Sui.PrivateKey)
	if err != nil {
		zapLogger.Fatal("invalid SUI_PRIVATE_KEY", zap.Error(err))
	}
	zapLogger.Info("relayer wallet loaded", zap.String("address", relayer.Address()), zap.String("network", cfg.Sui.Network))

	outbound := httpx.NewClient(httpx.Options{
		Timeout:  60 * time.Second,
		RetryMax: httpx.DefaultRetryMax,
		Logger:   zapLogger.Named("http"),
	})
	suiClient := sui.NewClient(cfg.Sui.RPCURL, outbound)
	onChain := chain.New(suiClient, relayer, cfg.Sui, zapLogger, appMetrics)

	cipher, err := encryption.NewClient(cfg.Encryption.MasterKey, onChain, cfg.Encryption.Threshold)
	if err != nil {
		zapLogger.Fatal("invalid ENCRYPTION_MASTER_KEY", zap.Error(err))
	}
	blobs := walrus.NewClient(cfg.Walrus, outbound)

	// Ciphertext mirror is optional; without it downloads go through the aggregator.
	var mirror storage.Mirror
	if cfg.MinIO.Enabled {
		mirror, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			zapLogger.Fatal("failed to initialize object storage", zap.Error(err))
		}
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	sigRepo := postgres.NewSignaturePostgres(db)
	tokens := auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, zapLogger)

	docSvc := service.NewDocumentService(service.DocumentDeps{
		Repo:              docRepo,
		Records:           sigRepo,
		Chain:             onChain,
		Cipher:            cipher,
		Blobs:             blobs,
		Mirror:            mirror,
		PackageID:         cfg.Sui.AllowlistPackageID,
		MaxUploadBytes:    cfg.Walrus.MaxUploadBytes,
		ExplorerObjectURL: cfg.Sui.ExplorerObjectURL,
		Logger:            zapLogger,
		Metrics:           appMetrics,
	})
	verifySvc := service.NewVerificationService(service.VerificationDeps{
		Docs:           docRepo,
		Records:        sigRepo,
		ExplorerTxURL:  cfg.Sui.ExplorerTxURL,
		MaxUploadBytes: cfg.Walrus.MaxUploadBytes,
		Logger:         zapLogger,
		Metrics:        appMetrics,
	})
	sessionSvc := service.NewSessionService(tokens, cfg.Auth.ChallengeTTL, zapLogger)

	if cfg.Indexer.Enabled {
		indexer := service.NewSignatureIndexer(onChain, sigRepo, sigRepo, cfg.Indexer.Interval, cfg.Indexer.PageSize, zapLogger, appMetrics)
		go indexer.Run(ctx)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Walrus.MaxUploadBytes) + 1<<20,
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(httpMetrics.Handler())
	app.Use(middleware.Logger(zapLogger.Named("access")))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:           db,
		Documents:    docSvc,
		Verification: verifySvc,
		Sessions:     sessionSvc,
		Blobs:        blobs,
		Tokens:       tokens,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		host := c.Get("Host")
		if host == "" {
			host = cfg.AppHost
		}
		docs.SwaggerInfo.Host = host
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		zapLogger.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zapLogger.Warn("server shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	zapLogger.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := app.Listen(addr); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
