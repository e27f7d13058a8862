package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazlamahedich/shop-sub004/database"
	"github.com/hazlamahedich/shop-sub004/handlers"
	"github.com/hazlamahedich/shop-sub004/middleware"
	"github.com/hazlamahedich/shop-sub004/pipeline"
	"github.com/hazlamahedich/shop-sub004/services"
	"github.com/hazlamahedich/shop-sub004/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	log.Printf("🔧 AI_PROVIDER: %s", os.Getenv("AI_PROVIDER"))
	log.Printf("🔧 CHANNEL_GATEWAY_URL: %s", os.Getenv("CHANNEL_GATEWAY_URL"))

	// Initialize database
	database.InitDatabase()
	db := database.GetDB()

	// Initialize LLM provider (circuit breaker wrapped)
	provider, err := services.GetAIProvider()
	if err != nil {
		log.Fatalf("❌ Failed to initialize AI provider: %v", err)
	}
	log.Printf("✅ AI provider ready: %s (%s)", provider.GetProviderName(), provider.GetModelName())

	// Start credit monitor in background
	log.Println("🔍 Starting credit monitor...")
	go services.MonitorCredits()

	// Wire the conversation pipeline
	catalog := services.NewCatalogService(db)
	history := services.NewChatHistoryService(db)
	consent := services.NewConsentService(db)
	hybrid := services.NewHybridModeService(db)
	notifier := services.NewNotifier(db)
	go notifier.DrainQueuedAlerts()
	handoffSvc := services.NewHandoffService(db, notifier)
	classifier := services.NewIntentClassifier(provider)
	detector := pipeline.NewMentionDetector(provider, catalog)

	dispatcher := pipeline.NewDispatcher(
		pipeline.NewHandoffHandler(db, handoffSvc, hybrid),
		pipeline.NewOrderHandler(db, catalog),
		pipeline.NewGeneralHandler(provider, catalog, detector),
	)
	pipe := pipeline.New(db, classifier, consent, hybrid, catalog, history, dispatcher)

	// Start pipeline worker in background with graceful shutdown support
	pipelineWorker := worker.NewPipelineWorker(pipe)
	go func() {
		log.Println("Starting pipeline worker...")
		pipelineWorker.Start()
	}()

	// Setup Gin router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Home page and health check
	router.GET("/", handlers.HomePage)
	router.GET("/health", handlers.HealthCheck)

	// Inbound message webhook from the channel gateway
	webhook := handlers.NewWebhookHandler(services.NewMerchantResolver(db), history)
	router.POST("/webhook/message", webhook.HandleInbound)

	// Merchant dashboard (JWT protected)
	dashboard := router.Group("/dashboard")
	dashboard.Use(middleware.JWTMiddleware())
	{
		dashboard.GET("/alerts", handlers.ListHandoffAlerts)
		dashboard.POST("/alerts/:id/read", handlers.MarkAlertRead)
		dashboard.GET("/conversations/:session", handlers.ConversationStatus)
		dashboard.POST("/conversations/:session/takeover", handlers.TakeOverConversation)
		dashboard.POST("/conversations/:session/release", handlers.ReleaseConversation)
	}

	// Get port from environment or default to 8070
	port := os.Getenv("PORT")
	if port == "" {
		port = "8070"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("🚀 Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("🛑 Shutting down server...")

	log.Println("🤖 Stopping pipeline worker...")
	pipelineWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited gracefully")
}
