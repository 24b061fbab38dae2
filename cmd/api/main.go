package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/application/webhook_handlers"
	"shopify-ingest-layer/internal/domain"
	apiinfra "shopify-ingest-layer/internal/infrastructure/api"
	"shopify-ingest-layer/internal/infrastructure/metrics"
	tenantmiddleware "shopify-ingest-layer/internal/infrastructure/middleware"
	"shopify-ingest-layer/internal/infrastructure/pubsub"
	"shopify-ingest-layer/internal/infrastructure/queue"
	"shopify-ingest-layer/internal/infrastructure/repository"
	"shopify-ingest-layer/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Required configuration: the store and the queue backing store.
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL environment variable is required")
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		logger.Fatal().Msg("REDIS_ADDR environment variable is required")
	}

	ctx := context.Background()

	// Connect to the relational store
	db, err := repository.OpenDB(databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := repository.EnsureSchema(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Connect to Redis (queue backing store)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	cancelPing()

	// Webhook audit log: MongoDB when configured, otherwise disabled.
	var auditLog ports.WebhookAuditLog = repository.NewNoopWebhookEventRepository()
	if mongoURI := os.Getenv("MONGODB_URI"); mongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer mongoClient.Disconnect(ctx)

		mongoDatabase := os.Getenv("MONGODB_DATABASE")
		if mongoDatabase == "" {
			mongoDatabase = "shopify_ingest"
		}
		auditLog = repository.NewMongoWebhookEventRepository(mongoClient.Database(mongoDatabase))
	} else {
		logger.Warn().Msg("MONGODB_URI not set, webhook audit log disabled")
	}

	// Initialize repositories
	tenantRepo := repository.NewBunTenantRepository(db)
	store := repository.NewBunStore(db)
	analyticsRepo := repository.NewBunAnalyticsRepository(db)

	// Initialize application services
	tenantService := application.NewTenantService(tenantRepo, logger)
	ingestionService := application.NewIngestionService(store, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(ingestionService, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewProductHandler(ingestionService, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewCheckoutHandler(ingestionService, logger))

	// Metrics and the operational alert channel
	registry := prometheus.NewRegistry()
	pipelineMetrics := metrics.New(registry)

	alerts := pubsub.NewAlertPubSub(logger)
	alertChannel := alerts.Subscribe(ctx)
	go func() {
		for alert := range alertChannel.Alerts {
			logger.Error().
				Str("jobId", alert.Job.ID).
				Str("topic", alert.Job.Topic).
				Str("tenantId", alert.Job.TenantID).
				Str("reason", alert.Reason).
				Msg("Webhook job exhausted retries, parked for manual inspection")
		}
	}()

	// Start the durable queue workers
	jobQueue := queue.NewRedisQueue(redisClient, queue.RedisQueueConfig{
		Workers:     envInt("QUEUE_WORKERS", 4),
		MaxAttempts: envInt("QUEUE_MAX_ATTEMPTS", 5),
	}, alerts, pipelineMetrics, logger)
	jobQueue.Start(ctx, func(ctx context.Context, job *domain.WebhookJob) error {
		return webhookDispatcher.Dispatch(ctx, job)
	})
	defer jobQueue.Stop()

	// Intake and read-side handlers
	webhookHandler := apiinfra.NewWebhookHandler(tenantService, jobQueue, auditLog, pipelineMetrics, logger)
	dashboardHandler := apiinfra.NewDashboardHandler(analyticsRepo, logger)
	authHandler := apiinfra.NewAuthHandler(tenantService, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Operational metrics
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Swagger documentation - public
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Webhook intake endpoint
	r.Post("/webhooks/shopify", webhookHandler.Handle)

	// Login / tenant lookup
	r.Post("/api/auth/login", authHandler.Login)

	// Tenant-scoped read API
	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(tenantmiddleware.TenantResolver(tenantService, logger))
		r.Get("/stats", dashboardHandler.Stats)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("Starting webhook ingestion server")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// envInt reads an integer environment variable, falling back on absent or
// unparsable values.
func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
