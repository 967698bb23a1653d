package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SmaylovSerikbay/locals-sub000/internal/database"
	"github.com/SmaylovSerikbay/locals-sub000/internal/middleware"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/relay"
	"github.com/SmaylovSerikbay/locals-sub000/internal/repository"
	"github.com/SmaylovSerikbay/locals-sub000/internal/services"
)

// baseSuite wires the full stack against an in-memory SQLite database.
// Redis, Kafka and the external bridge are all absent, exactly the shape
// the services take in a minimal deployment.
type baseSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	hub      *relay.Hub
	items    *services.ItemService
	messages *services.MessageService
	reviews  *services.ReviewService
	users    *services.UserService
	bridge   *services.BridgeService
}

// SetupTest runs before each test
func (suite *baseSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.Response{},
		&models.Participant{},
		&models.Message{},
		&models.Review{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	itemRepo := repository.NewItemRepository(suite.db)
	responseRepo := repository.NewResponseRepository(suite.db)
	participantRepo := repository.NewParticipantRepository(suite.db)
	messageRepo := repository.NewMessageRepository(suite.db)
	reviewRepo := repository.NewReviewRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)

	suite.hub = relay.NewHub()
	suite.messages = services.NewMessageService(messageRepo, itemRepo, userRepo, suite.hub)
	suite.bridge = services.NewBridgeService(nil, itemRepo, userRepo, suite.messages, 0)
	suite.messages.SetBridge(suite.bridge)
	suite.items = services.NewItemService(itemRepo, responseRepo, participantRepo, userRepo, suite.messages, nil, suite.hub, suite.bridge)
	suite.reviews = services.NewReviewService(reviewRepo, itemRepo, userRepo, suite.hub)
	suite.users = services.NewUserService(userRepo)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.registerRoutes()
}

// TearDownTest runs after each test
func (suite *baseSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *baseSuite) registerRoutes() {
	itemHandler := NewItemHandler(suite.items)
	responseHandler := NewResponseHandler(suite.items)
	participantHandler := NewParticipantHandler(suite.items)
	messageHandler := NewMessageHandler(suite.messages)
	reviewHandler := NewReviewHandler(suite.reviews)
	userHandler := NewUserHandler(suite.users)
	bridgeHandler := NewBridgeHandler(suite.bridge)

	api := suite.router.Group("/api")
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
}

// do performs a request against the full router
func (suite *baseSuite) do(method, url string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *baseSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// Fixtures

func (suite *baseSuite) createTestUser(id uint64, name string) *models.User {
	user := &models.User{
		ID:        id,
		FirstName: name,
		Username:  name,
		Rating:    models.DefaultRating,
		Active:    true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *baseSuite) createTestTask(authorID uint64, title string) *models.Item {
	price := 50.0
	item := &models.Item{
		Type:      models.ItemTypeTask,
		Title:     title,
		Price:     &price,
		Currency:  "KZT",
		Latitude:  43.238949,
		Longitude: 76.889709,
		Status:    models.ItemStatusOpen,
		AuthorID:  authorID,
	}
	suite.Require().NoError(suite.db.Create(item).Error)
	return item
}

func (suite *baseSuite) createTestEvent(authorID uint64, title string, maxParticipants int, requiresApproval bool) *models.Item {
	item := &models.Item{
		Type:             models.ItemTypeEvent,
		Title:            title,
		MaxParticipants:  maxParticipants,
		RequiresApproval: requiresApproval,
		Latitude:         43.238949,
		Longitude:        76.889709,
		Status:           models.ItemStatusOpen,
		AuthorID:         authorID,
	}
	suite.Require().NoError(suite.db.Create(item).Error)
	return item
}

func (suite *baseSuite) reloadItem(id string) *models.Item {
	var item models.Item
	suite.Require().NoError(suite.db.First(&item, "id = ?", id).Error)
	return &item
}

func (suite *baseSuite) itemStatus(id string) models.ItemStatus {
	return suite.reloadItem(id).Status
}
