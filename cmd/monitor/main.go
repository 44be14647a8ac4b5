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

	"github.com/jmoiron/sqlx"

	"github.com/medwatch/slot-monitor/internal/adapters/cache"
	"github.com/medwatch/slot-monitor/internal/adapters/database"
	"github.com/medwatch/slot-monitor/internal/adapters/events"
	"github.com/medwatch/slot-monitor/internal/adapters/providers/upstream"
	"github.com/medwatch/slot-monitor/internal/api/handlers"
	"github.com/medwatch/slot-monitor/internal/api/routes"
	"github.com/medwatch/slot-monitor/internal/application/services"
	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/providers"
	"github.com/medwatch/slot-monitor/internal/infrastructure/clients/postgres"
	"github.com/medwatch/slot-monitor/internal/infrastructure/clients/redis"
	"github.com/medwatch/slot-monitor/internal/infrastructure/notifications"
	"github.com/medwatch/slot-monitor/internal/infrastructure/observability"
	"github.com/medwatch/slot-monitor/pkg/config"
)

func main() {

	// Load configuration

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the monitor can work without caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for real-time slot updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize adapters

	scheduleAdapter := database.NewScheduleAdapter(pgClient)
	userAdapter := database.NewUserAdapter(pgClient)
	notificationAdapter := database.NewNotificationAdapter(sqlx.NewDb(pgClient.DB(), "postgres"))

	scheduleProvider := upstream.NewScheduleProvider(&cfg.Upstream, cacheProvider)
	if cfg.Upstream.UseMock {
		log.Println("Warning: using mock schedule provider")
	}

	// Initialize services

	extractor := services.NewAppointmentExtractor(cfg.Monitor.AllowedDoctors, cfg.Monitor.ExcludedPositions)
	tracker := services.NewAppointmentTracker(
		scheduleProvider,
		extractor,
		scheduleAdapter,
		cfg.Monitor.DepartmentIDs,
	)
	tracker.SetUpstreamFailureHook(func(ctx context.Context, departmentID int) {
		observability.RecordUpstreamFailure(ctx, metrics, departmentID)
	})

	var notifier *services.NotifierService
	if cfg.Telegram.BotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN is not set; running in detect-only mode")
	} else {
		sender, err := notifications.NewTelegramSender(cfg.Telegram.BotToken)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram sender: %v", err)
		}
		notifier = services.NewNotifierService(
			notificationAdapter,
			sender,
			eventBus,
			time.Duration(cfg.Monitor.SuppressionHours)*time.Hour,
		)
	}

	checkFn := func(ctx context.Context, user *entities.UserSchedule) error {
		start := time.Now()
		candidates, err := tracker.CheckUser(ctx, user)
		if err != nil {
			return err
		}
		observability.RecordCheckMetric(ctx, metrics, user.UserID, len(candidates), time.Since(start))

		if notifier == nil || len(candidates) == 0 {
			return nil
		}
		sent, err := notifier.NotifyUser(ctx, user.UserID, candidates)
		for i := 0; i < sent; i++ {
			observability.RecordNotification(ctx, metrics, true)
		}
		for i := sent; i < len(candidates); i++ {
			observability.RecordNotification(ctx, metrics, false)
		}
		return err
	}

	scheduler := services.NewUserScheduler(userAdapter, checkFn, cfg.Monitor.MaxConcurrentChecks)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	log.Println("User scheduler started successfully")

	// Initialize handlers

	userHandler := handlers.NewUserHandler(userAdapter)
	monitorHandler := handlers.NewMonitorHandler(tracker, scheduler)

	// Set up router

	router := routes.NewRouter(
		userHandler,
		monitorHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Stop the scheduler, waiting for in-flight checks
	scheduler.Stop()

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
