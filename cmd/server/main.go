// @title           Ourxmas Backend API
// @version         1.0.0
// @description     Records Sepay payments and turns paid uploads into a deployed Christmas experience page.

// @contact.name   API Support
// @contact.email  support@ourxmas.site

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"ourxmas-backend/internal/config"
	"ourxmas-backend/internal/database"
	"ourxmas-backend/internal/deploy"
	"ourxmas-backend/internal/handlers"
	"ourxmas-backend/internal/logger"
	"ourxmas-backend/internal/middleware"
	"ourxmas-backend/internal/objectstore"
	"ourxmas-backend/internal/render"
	"ourxmas-backend/internal/services"
	"ourxmas-backend/internal/supabase"
	"ourxmas-backend/internal/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DatabaseURL == "" {
		appLog.Fatal("DATABASE_URL is required")
	}
	ledger, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("failed to connect to database", "error", err)
	}
	defer ledger.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.NewMigrator(ledger.DB(), appLog).Run(ctx); err != nil {
		appLog.Fatal("migration failed", "error", err)
	}
	cancel()
	appLog.Info("migrations completed")

	store, err := newObjectStore(cfg, appLog)
	if err != nil {
		appLog.Fatal("failed to initialize object store", "driver", cfg.ObjectStoreDriver, "error", err)
	}

	var templates render.TemplateSource = render.EmbeddedSource()
	if cfg.TemplateDir != "" {
		templates = render.LayeredSource{render.NewFSSource(os.DirFS(cfg.TemplateDir)), render.EmbeddedSource()}
	}

	deployer := deploy.New(store, deploy.Options{
		Domain:         cfg.DeployDomain,
		PreviewDir:     cfg.PreviewDir,
		PreviewBaseURL: cfg.BaseURL,
		Workers:        cfg.DeployWorkers,
		Timeout:        cfg.DeployTimeout,
	}, appLog)

	transactionService := services.NewTransactionService(ledger, appLog)
	generationService := services.NewGenerationService(
		validator.New(cfg.TranscodeWorkers, appLog),
		services.NewPaymentGate(ledger, cfg.PaymentMinAmount, cfg.ClaimTTL, appLog),
		render.New(templates),
		deployer,
		appLog,
	)

	healthHandler := handlers.NewHealthHandler(cfg.AppVersion, ledger)
	webhookHandler := handlers.NewWebhookHandler(transactionService, appLog)
	transactionsHandler := handlers.NewTransactionsHandler(transactionService, appLog)
	generateHandler := handlers.NewGenerateHandler(generationService, cfg.MaxUploadBytes, appLog)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(appLog))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)

	router.Static("/preview", cfg.PreviewDir)

	v1 := router.Group("/api/v1")
	v1.POST("/webhook/sepay", middleware.SepayAPIKey(cfg), webhookHandler.HandleSepay)

	admin := v1.Group("/transactions")
	admin.Use(middleware.AdminAuth(cfg))
	admin.GET("", transactionsHandler.List)
	admin.GET("/:id", transactionsHandler.Get)

	generate := router.Group("/api/generate")
	generate.POST("", generateHandler.Generate)
	generate.POST("/validate", generateHandler.Validate)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.DeployTimeout+5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("graceful shutdown failed", "error", err)
	}
}

// newObjectStore returns a nil store when the selected driver has no
// credentials, leaving only local preview deployments available.
func newObjectStore(cfg *config.Config, log *logger.Logger) (deploy.ObjectStore, error) {
	if !cfg.ObjectStoreConfigured() {
		log.Warn("object store not configured, only local previews are available", "driver", cfg.ObjectStoreDriver)
		return nil, nil
	}

	switch cfg.ObjectStoreDriver {
	case config.DriverSupabase:
		client, err := supabase.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		storage, err := supabase.NewStorageClient(client)
		if err != nil {
			return nil, err
		}
		log.Info("supabase storage ready", "bucket_url", storage.GetPublicURL(""))
		return storage, nil
	default:
		s3, err := objectstore.NewS3StoreFromConfig(cfg)
		if err != nil || s3 == nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("could not verify bucket", "bucket", s3.Bucket(), "error", err)
		}
		return s3, nil
	}
}
