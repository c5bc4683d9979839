package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vacationrentals/internal/adapters/cache"
	"github.com/zatekoja/vacationrentals/internal/adapters/database"
	"github.com/zatekoja/vacationrentals/internal/adapters/events"
	"github.com/zatekoja/vacationrentals/internal/adapters/providers/payments"
	"github.com/zatekoja/vacationrentals/internal/adapters/search"
	"github.com/zatekoja/vacationrentals/internal/api/handlers"
	"github.com/zatekoja/vacationrentals/internal/api/middleware"
	"github.com/zatekoja/vacationrentals/internal/api/routes"
	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/openai"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/redis"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/notifications"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/observability"
	"github.com/zatekoja/vacationrentals/pkg/config"
	"github.com/zatekoja/vacationrentals/pkg/retry"
	"github.com/zatekoja/vacationrentals/pkg/validation"
)

// completeStaysInterval is how often ended stays are moved to COMPLETED
const completeStaysInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Logging.Env, cfg.Logging.Level)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			observability.EnableOTelLogExport()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized successfully")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pgClient.DB()); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// Initialize Redis client; the API works without it, minus caching and live notifications
	var cacheProvider providers.CacheProvider
	var rateCounter providers.RateCounter
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis client; caching and event bus disabled")
	} else {
		defer redisClient.Close()
		redisAdapter := cache.NewRedisAdapter(redisClient)
		cacheProvider = redisAdapter
		rateCounter = redisAdapter
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("Redis client initialized successfully")
	}

	// Initialize Typesense client
	var propertyIndex providers.PropertyIndex
	if cfg.Typesense.Enabled {
		typesenseClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Typesense client; search falls back to the database")
		} else {
			adapter := search.NewTypesenseAdapter(typesenseClient)
			if err := adapter.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to init Typesense schema")
			}
			propertyIndex = adapter
			log.Info().Msg("Typesense client initialized successfully")
		}
	}

	// AI provider is optional; the assistant falls back to the chatbot without it
	var assistantProvider providers.AssistantProvider
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; AI assistant answers with the chatbot")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize OpenAI client")
		} else {
			assistantProvider = openaiClient
		}
	}

	paymentProvider, err := payments.NewPaymentProvider(payments.ProviderConfig{
		Provider: cfg.Payments.Provider,
		Retry: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  200 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			BackoffFactor: 2,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize payment provider")
	}

	// Initialize adapters
	userAdapter := database.NewUserAdapter(pgClient)
	propertyAdapter := database.NewPropertyAdapter(pgClient)
	calendarAdapter := database.NewCalendarAdapter(pgClient)
	bookingAdapter := database.NewBookingAdapter(pgClient)
	paymentAdapter := database.NewPaymentAdapter(pgClient)
	notificationAdapter := database.NewNotificationAdapter(pgClient)

	// Initialize services
	validator := validation.New()

	var cacheInvalidation *services.CacheInvalidationService
	if cacheProvider != nil {
		cacheInvalidation = services.NewCacheInvalidationService(cacheProvider)
	}

	emailService := services.NewEmailService(notifications.NewSender(&cfg.Email), userAdapter)
	notificationService := services.NewNotificationService(notificationAdapter, eventBus, validator)
	propertyService := services.NewPropertyService(propertyAdapter, propertyIndex, cacheInvalidation, validator, cfg.Payments.Currency)
	availabilityService := services.NewAvailabilityService(propertyAdapter, calendarAdapter, bookingAdapter, validator)
	bookingService := services.NewBookingService(
		bookingAdapter,
		propertyAdapter,
		availabilityService,
		notificationService,
		emailService,
		metrics,
		validator,
	)
	paymentService := services.NewPaymentService(
		paymentAdapter,
		bookingAdapter,
		paymentProvider,
		notificationService,
		emailService,
		metrics,
		validator,
	)
	bookingService.SetRefunder(paymentService)

	chatbotService := services.NewChatbotService()
	assistantService := services.NewAssistantService(assistantProvider, chatbotService, validator, services.AssistantConfig{
		SessionTTL:    cfg.Assistant.SessionTTL,
		SweepInterval: cfg.Assistant.SweepInterval,
		MaxHistory:    cfg.Assistant.MaxHistory,
	})
	go assistantService.RunSweeper(ctx)

	go runStayCompletion(ctx, bookingService)

	// Initialize handlers
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	sseHandler := handlers.NewSSEHandler(eventBus, cfg.Server.HeartbeatInterval)
	assistantHandler := handlers.NewAssistantHandler(
		assistantService,
		chatbotService,
		handlers.NewRateLimiter(rateCounter, "ratelimit:assistant:", cfg.Assistant.RateLimit, time.Minute, cfg.Server.TrustedProxies),
	)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
		log.Info().Msg("Cache middleware initialized successfully")
	}

	// Set up router
	router := routes.NewRouter(
		propertyHandler,
		availabilityHandler,
		bookingHandler,
		paymentHandler,
		notificationHandler,
		sseHandler,
		assistantHandler,
		cacheMiddleware,
		metrics,
		cfg.CORS.AllowedOrigins,
	)

	// Create HTTP server. WriteTimeout stays off so notification streams are not cut.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}

// runStayCompletion completes ended stays on start and then every completeStaysInterval
func runStayCompletion(ctx context.Context, bookings *services.BookingService) {
	ticker := time.NewTicker(completeStaysInterval)
	defer ticker.Stop()

	for {
		if _, err := bookings.CompleteEndedStays(ctx, time.Now()); err != nil {
			log.Error().Err(err).Msg("Failed to complete ended stays")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
