package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OperacionalChopp/botchopp/api/handlers"
	"github.com/OperacionalChopp/botchopp/api/routes"
	"github.com/OperacionalChopp/botchopp/internal/chatbot"
	"github.com/OperacionalChopp/botchopp/internal/config"
	"github.com/OperacionalChopp/botchopp/internal/database"
	"github.com/OperacionalChopp/botchopp/internal/events"
	"github.com/OperacionalChopp/botchopp/internal/knowledge"
	"github.com/OperacionalChopp/botchopp/internal/llm"
	"github.com/OperacionalChopp/botchopp/internal/matcher"
	"github.com/OperacionalChopp/botchopp/internal/metrics"
	"github.com/OperacionalChopp/botchopp/internal/queue"
	"github.com/OperacionalChopp/botchopp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.NewForEnvironment(cfg.Server.Environment)
	defer func() { _ = logger.Sync() }()

	// Get the underlying zap logger for services
	zapLogger := logger.Zap()

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Initialize database
	var db *gorm.DB
	var faqRepository knowledge.Repository
	if cfg.Database.Enabled {
		db, err = database.NewPostgresConnection(cfg.Database)
		if err != nil {
			logger.Fatalw("Failed to connect to database", "error", err)
		}
		if err := knowledge.RunMigrations(db); err != nil {
			logger.Fatalw("Failed to run knowledge migrations", "error", err)
		}
		faqRepository = knowledge.NewGormRepository(db, zapLogger)
		if _, err := knowledge.SeedIfEmpty(startupCtx, faqRepository, zapLogger); err != nil {
			logger.Errorw("Failed to seed FAQ table", "error", err)
		}
	}

	// Initialize redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatalw("Failed to connect to redis", "error", err)
		}
	}

	// Load knowledge base; the bot keeps running with an empty one
	base := knowledge.NewLoader(cfg.Knowledge, faqRepository, zapLogger).LoadOrEmpty(startupCtx)
	faqMatcher := matcher.New(base, matcher.Rule(cfg.Matcher.Rule))

	// Initialize event bus and metrics
	eventBus := events.NewEventBus(zapLogger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)
	if err := appMetrics.Subscribe(eventBus); err != nil {
		logger.Fatalw("Failed to subscribe metrics to events", "error", err)
	}

	// Initialize assistant
	var assistant llm.LLMService
	if cfg.LLM.Enabled {
		var history llm.HistoryStore
		if redisClient != nil {
			history = llm.NewRedisHistory(redisClient, cfg.Redis.KeyPrefix, cfg.LLM.HistorySize, time.Duration(cfg.Redis.HistoryTTL)*time.Second)
		}
		assistant = llm.NewLLMService(eventBus, zapLogger, cfg.LLM, history)
		logger.Infow("Assistant enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}

	// Initialize update queue
	var updateQueue queue.Queue
	if cfg.Queue.Enabled {
		updateQueue = newQueue(cfg, redisClient)
	}

	// Initialize chatbot service
	chatbotService, err := chatbot.NewChatbotService(eventBus, zapLogger, cfg.Chatbot, faqMatcher, assistant, updateQueue)
	if err != nil {
		logger.Fatalw("Failed to initialize chatbot service", "error", err)
	}

	// Start workers
	var pool queue.WorkerPool
	if updateQueue != nil {
		pool, err = queue.NewWorkerPool(cfg.Queue, updateQueue, chatbotService.HandleJob, eventBus, zapLogger)
		if err != nil {
			logger.Fatalw("Failed to create worker pool", "error", err)
		}
		if err := pool.Start(context.Background()); err != nil {
			logger.Fatalw("Failed to start worker pool", "error", err)
		}
		logger.Infow("Update queue started",
			"queue", cfg.Queue.Name,
			"backend", queueBackend(redisClient),
			"worker_count", cfg.Queue.WorkerCount)
	} else {
		logger.Info("Update queue disabled, processing webhooks inline")
	}

	// Register the webhook when a public address is configured
	if cfg.Chatbot.WebhookURL() != "" {
		if webhookURL, err := chatbotService.SetupWebhook(); err != nil {
			logger.Errorw("Failed to register webhook", "error", err)
		} else {
			logger.Infow("Webhook registered", "webhook_url", webhookURL)
		}
	} else {
		logger.Warn("No webhook base URL or host configured, skipping webhook registration")
	}

	// Setup Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	health := handlers.HealthDependencies{
		DB:        db,
		Knowledge: base,
		Queue:     updateQueue,
	}
	if redisClient != nil {
		health.Redis = redisClient
	}

	router := gin.New()
	routes.SetupRoutes(router, routes.Dependencies{
		ChatbotService: chatbotService,
		Health:         health,
		Metrics:        appMetrics,
		Chatbot:        cfg.Chatbot,
		RateLimit:      cfg.RateLimit,
		Logger:         logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infow("Starting server",
			"port", cfg.Server.Port,
			"webhook_path", routes.WebhookPath(cfg.Chatbot),
			"knowledge_entries", base.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop accepting webhooks before the workers go away
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("Server forced to shutdown", "error", err)
	}

	if pool != nil {
		logger.Info("Stopping worker pool...")
		if err := pool.Stop(); err != nil {
			logger.Errorw("Failed to stop worker pool gracefully", "error", err)
		}
		summary := pool.GetMetrics().GetMetricsSummary()
		logger.Infow("Worker pool stopped", "summary", summary)
	}

	if updateQueue != nil {
		if depth, err := updateQueue.Len(ctx); err == nil && depth > 0 {
			logger.Warnw("Updates left in queue", "count", depth)
		}
		if err := updateQueue.Close(); err != nil {
			logger.Errorw("Failed to close queue", "error", err)
		}
	}

	if err := eventBus.Close(); err != nil {
		logger.Errorw("Failed to close event bus", "error", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Errorw("Failed to close redis client", "error", err)
		}
	}

	if err := database.Close(db); err != nil {
		logger.Errorw("Failed to close database", "error", err)
	}

	logger.Info("Server exited")
}

// newQueue uses redis when it is enabled so queued updates survive restarts
func newQueue(cfg *config.Config, client *redis.Client) queue.Queue {
	if client != nil {
		return queue.NewRedisQueue(client, cfg.Redis.KeyPrefix, cfg.Queue.Name, time.Duration(cfg.Queue.PollTimeout)*time.Second)
	}
	return queue.NewMemoryQueue(cfg.Queue.BufferSize)
}

func queueBackend(client *redis.Client) string {
	if client != nil {
		return "redis"
	}
	return "memory"
}
