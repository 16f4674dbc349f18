package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-volume-toolkit/internal/app"
	"crypto-volume-toolkit/internal/bot"
	"crypto-volume-toolkit/internal/cache"
	"crypto-volume-toolkit/internal/config"
	"crypto-volume-toolkit/internal/db"
	"crypto-volume-toolkit/internal/handler"
	"crypto-volume-toolkit/internal/job"
	"crypto-volume-toolkit/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "crypto-volume-toolkit/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newToolkitFunc         = app.New
	newScanSchedulerFunc   = job.NewScanScheduler
	startSchedulerFunc     = func(s *job.ScanScheduler, ctx context.Context) { go s.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Crypto Volume Analysis Toolkit API
// @version         1.0
// @description     Spot volume scans, CoinAlyze futures merges and report downloads.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  APIKey
// @in                          header
// @name                        X-API-Key
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	toolkit := newToolkitFunc(app.Options{Config: cfg, Tracer: tracer, Pool: db.Pool, Redis: cache.Client})

	// Archive tables only exist with Postgres
	var reports handler.ReportLister
	if toolkit.Reports != nil {
		if err := toolkit.Reports.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		reports = toolkit.Reports
	}

	runner := job.NewRunner(ctx, toolkit.Tracker)

	// Scheduled scans (background goroutine, stopped by ctx cancel)
	scanner := job.SpotScanFunc(func(ctx context.Context, uid string) error {
		_, err := toolkit.Spot.Run(ctx, uid)
		return err
	})
	scheduler := newScanSchedulerFunc(tracer, runner, scanner, cfg.ScheduledUser, cfg.ScanIntervalMins)
	startSchedulerFunc(scheduler, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(bot.NewCommands(bot.Deps{
		Tracer:   tracer,
		Spot:     toolkit.Spot,
		Tasks:    runner,
		Reports:  toolkit.Workspace,
		Progress: toolkit.Tracker,
	}))

	// Create handlers and routes
	h := newHandlerFunc(handler.Deps{
		Tracer:          tracer,
		Settings:        toolkit.Settings,
		Keys:            toolkit.Keys,
		Spot:            toolkit.Spot,
		Analysis:        toolkit.Analysis,
		Tasks:           runner,
		Progress:        toolkit.Tracker,
		Workspace:       toolkit.Workspace,
		Reports:         reports,
		APIKey:          cfg.DashboardAPIKey,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		log.Printf("Dashboard listening on %s", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	runner.Wait()
	db.Close()
	cache.Close()
	log.Println("Server exiting")
}
