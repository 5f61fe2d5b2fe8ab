package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"gulmohar/billing/internal/api"
	"gulmohar/billing/internal/api/handlers"
	"gulmohar/billing/internal/api/middleware"
	"gulmohar/billing/internal/cache"
	"gulmohar/billing/internal/clock"
	"gulmohar/billing/internal/config"
	"gulmohar/billing/internal/db"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/printing"
	"gulmohar/billing/internal/repository"
	"gulmohar/billing/internal/services"
	"gulmohar/billing/internal/storage"
	"gulmohar/billing/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (PDF archive worker), 'all' (default), 'seed' (create the admin account and exit)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName, log)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient, log); err != nil {
			log.Errorw("error disconnecting from MongoDB", "error", err)
		}
	}()

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx, mongoDb); err != nil {
		cancelIndex()
		log.Fatalw("failed to ensure indexes", "error", err)
	}
	cancelIndex()

	clk := clock.New()
	billRepo := repository.NewMongoBillRepository(mongoDb)
	sequenceRepo := repository.NewMongoSequenceRepository(mongoDb)
	userRepo := repository.NewMongoUserRepository(mongoDb)

	userService := services.NewUserService(userRepo, clk, cfg, log)

	if cfg.RunMode == "seed" {
		seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelSeed()
		created, err := userService.SeedAdmin(seedCtx)
		if err != nil {
			log.Fatalw("failed to seed admin account", "error", err)
		}
		log.Infow("admin seed finished", "username", cfg.AdminUsername, "created", created)
		return
	}

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		log.Fatalw("failed to connect to Redis", "error", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient, log); err != nil {
			log.Errorw("error disconnecting from Redis", "error", err)
		}
	}()

	// A zero TTL yields a no-op cache.
	reportCache := cache.NewReportCache(redisClient, cfg.ReportCacheTTL)

	// PDF rendering
	engine, err := printing.NewTemplateEngine(cfg.BusinessTimezone)
	if err != nil {
		log.Fatalw("failed to parse document templates", "error", err)
	}
	converter := printing.NewChromedpConverter(printing.ChromedpConfig{
		RemoteURL: cfg.ChromeRemoteURL,
		NoSandbox: cfg.ChromeNoSandbox,
		Timeout:   cfg.PdfRenderTimeout,
	}, log)
	defer converter.Close()
	renderer := printing.NewRenderer(engine, converter, printing.Resort{
		Name:    cfg.ResortName,
		Address: cfg.ResortAddress,
		Phone:   cfg.ResortPhone,
		Email:   cfg.ResortEmail,
		GSTIN:   cfg.ResortGSTIN,
	}, clk)

	// PDF archive (optional). The interface values stay nil when disabled.
	var (
		archive         storage.IS3Storage
		billArchiver    services.IBillArchiver
		monthlyArchiver handlers.IMonthlyArchiver
		taskClient      *asynq.Client
	)
	if cfg.PdfArchiveEnabled {
		archive, err = storage.NewS3Storage(context.Background(), cfg, log)
		if err != nil {
			log.Fatalw("failed to initialize S3 storage", "error", err)
		}
		taskClient = tasks.NewClient(redisClient)
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Errorw("error closing task client", "error", err)
			}
		}()
		archiver := tasks.NewArchiver(taskClient, log)
		billArchiver = archiver
		monthlyArchiver = archiver
	}

	// Initialize Services
	sequenceService := services.NewInvoiceSequenceService(sequenceRepo, billRepo, cfg.BusinessTimezone, clk, log)
	billService := services.NewBillService(billRepo, sequenceService, reportCache, billArchiver, clk, cfg, log)
	reportService := services.NewReportService(billRepo, reportCache, clk, cfg.BusinessTimezone, log)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	var mainApiSrv *http.Server
	var rateLimiter *middleware.RateLimiterMiddleware
	var backgroundTaskSrv *asynq.Server

	log.Infow("starting application", "mode", cfg.RunMode)

	apiMode := func() {
		rateLimiter = middleware.NewRateLimiterMiddleware(cfg, log)
		router := api.SetupRouter(cfg, api.Handlers{
			Auth:   handlers.NewRestAuthHandler(userService),
			Bill:   handlers.NewRestBillHandler(billService, renderer, archive, billArchiver, cfg.PdfArchiveURLTTL, cfg.BusinessTimezone, log),
			Report: handlers.NewRestReportHandler(reportService, renderer, monthlyArchiver, log),
		}, rateLimiter, log)

		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Infow("main API listening", "port", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalw("main API ListenAndServe error", "error", err)
			}
			log.Info("main API server stopped")
		}()
	}

	bgMode := func() {
		if !cfg.PdfArchiveEnabled {
			log.Warn("PDF archive is disabled; background worker has nothing to do")
			return
		}
		processor := tasks.NewTaskProcessor(billService, reportService, renderer, archive, log)
		srv, mux := tasks.SetupServer(redisClient, processor, cfg.WorkerConcurrency, log)
		backgroundTaskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("background task server starting")
			if err := srv.Run(mux); err != nil {
				log.Fatalw("background task server error", "error", err)
			}
			log.Info("background task server stopped")
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalw("invalid run mode", "mode", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infow("shutting down gracefully", "signal", sig.String())

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Errorw("main API server shutdown error", "error", err)
		}
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
	}

	wg.Wait()
	log.Info("server gracefully stopped")
}
