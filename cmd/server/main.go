package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/SmaylovSerikbay/locals-sub000/internal/bridge"
	"github.com/SmaylovSerikbay/locals-sub000/internal/cache"
	"github.com/SmaylovSerikbay/locals-sub000/internal/config"
	"github.com/SmaylovSerikbay/locals-sub000/internal/database"
	"github.com/SmaylovSerikbay/locals-sub000/internal/handlers"
	"github.com/SmaylovSerikbay/locals-sub000/internal/middleware"
	"github.com/SmaylovSerikbay/locals-sub000/internal/relay"
	"github.com/SmaylovSerikbay/locals-sub000/internal/repository"
	"github.com/SmaylovSerikbay/locals-sub000/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	db := database.GetDB()

	// Repositories
	itemRepo := repository.NewItemRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Read-side cache, disabled when REDIS_URL is unset
	itemCache := cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)

	// Event fan-out: Kafka for the durable stream, the cache as an
	// invalidation sink. Either may be absent.
	var sinks []relay.Sink
	if len(cfg.KafkaBrokers) > 0 {
		relay.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if kafkaSink := relay.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic); kafkaSink != nil {
			sinks = append(sinks, kafkaSink)
		}
	}
	if itemCache != nil {
		sinks = append(sinks, itemCache)
	}
	hub := relay.NewHub(sinks...)

	// External chat bridge, disabled without a bot token
	var bridgeClient bridge.Client
	if cfg.BridgeBotToken != "" && cfg.BridgeChatID != 0 {
		bridgeClient = bridge.NewHTTPClient(cfg.BridgeAPIBase, cfg.BridgeBotToken, cfg.BridgeChatID, cfg.BridgeTimeout)
	}

	// Services
	messageService := services.NewMessageService(messageRepo, itemRepo, userRepo, hub)
	bridgeService := services.NewBridgeService(bridgeClient, itemRepo, userRepo, messageService, cfg.BridgeTimeout)
	messageService.SetBridge(bridgeService)
	itemService := services.NewItemService(itemRepo, responseRepo, participantRepo, userRepo, messageService, itemCache, hub, bridgeService)
	reviewService := services.NewReviewService(reviewRepo, itemRepo, userRepo, hub)
	userService := services.NewUserService(userRepo)

	// Handlers
	itemHandler := handlers.NewItemHandler(itemService)
	responseHandler := handlers.NewResponseHandler(itemService)
	participantHandler := handlers.NewParticipantHandler(itemService)
	messageHandler := handlers.NewMessageHandler(messageService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	userHandler := handlers.NewUserHandler(userService)
	bridgeHandler := handlers.NewBridgeHandler(bridgeService)
	wsHandler := handlers.NewWSHandler(hub)

	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	api := r.Group("/api")
	{
		items := api.Group("/items")
		{
			items.GET("", itemHandler.ListItems)
			items.POST("", itemHandler.CreateItem)
			items.GET("/nearby", itemHandler.NearbyItems)
			items.GET("/:id", itemHandler.GetItem)
			items.PATCH("/:id", itemHandler.UpdateItem)
			items.DELETE("/:id", itemHandler.DeleteItem)
			items.POST("/:id/complete", middleware.RequireItem(), itemHandler.CompleteItem)
			items.POST("/:id/cancel", middleware.RequireItem(), itemHandler.CancelItem)
			items.POST("/:id/responses", middleware.RequireItem(), responseHandler.CreateResponse)
			items.GET("/:id/responses", middleware.RequireItem(), responseHandler.ListResponses)
			items.POST("/:id/join", middleware.RequireItem(), participantHandler.Join)
			items.GET("/:id/join", middleware.RequireItem(), participantHandler.ListParticipants)
			items.PATCH("/:id/join/:participantId", middleware.RequireItem(), participantHandler.UpdateParticipant)
			items.DELETE("/:id/join/:participantId", middleware.RequireItem(), participantHandler.RemoveParticipant)
		}

		api.PATCH("/responses/:id", responseHandler.UpdateResponse)

		api.GET("/messages", messageHandler.ListMessages)
		api.POST("/messages", messageHandler.CreateMessage)

		api.GET("/reviews", reviewHandler.ListReviews)
		api.POST("/reviews", reviewHandler.CreateReview)

		api.POST("/users/sync", userHandler.SyncUser)
		api.GET("/users/:id", userHandler.GetUser)

		api.POST("/bridge/webhook", bridgeHandler.Webhook)

		api.GET("/ws", wsHandler.Stream)
	}

	log.Printf("Server starting on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
