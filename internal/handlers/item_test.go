package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
)

// ItemHandlerTestSuite covers item CRUD and lifecycle transitions
type ItemHandlerTestSuite struct {
	baseSuite
}

func (suite *ItemHandlerTestSuite) TestCreateItem_Task() {
	suite.createTestUser(1, "alice")

	w := suite.do("POST", "/api/items", map[string]interface{}{
		"type":      "TASK",
		"title":     "Fix the fence",
		"price":     100.0,
		"currency":  "KZT",
		"latitude":  43.25,
		"longitude": 76.95,
		"author_id": 1,
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	body := suite.decode(w)
	assert.Equal(suite.T(), "TASK", body["type"])
	assert.Equal(suite.T(), "OPEN", body["status"])
	assert.NotNil(suite.T(), body["task"])
	assert.Nil(suite.T(), body["event"])
}

func (suite *ItemHandlerTestSuite) TestCreateItem_ZeroCoordinates() {
	suite.createTestUser(1, "alice")

	// Null Island is a valid place to anchor an item.
	w := suite.do("POST", "/api/items", map[string]interface{}{
		"type":      "TASK",
		"title":     "Buoy maintenance",
		"latitude":  0.0,
		"longitude": 0.0,
		"author_id": 1,
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	body := suite.decode(w)
	assert.Equal(suite.T(), float64(0), body["latitude"])
	assert.Equal(suite.T(), float64(0), body["longitude"])
}

func (suite *ItemHandlerTestSuite) TestCreateItem_MissingCoordinates() {
	suite.createTestUser(1, "alice")

	w := suite.do("POST", "/api/items", map[string]interface{}{
		"type":      "TASK",
		"title":     "Fix the fence",
		"author_id": 1,
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ItemHandlerTestSuite) TestCreateItem_Event() {
	suite.createTestUser(1, "alice")

	w := suite.do("POST", "/api/items", map[string]interface{}{
		"type":              "EVENT",
		"title":             "Evening run",
		"max_participants":  10,
		"requires_approval": true,
		"latitude":          43.25,
		"longitude":         76.95,
		"author_id":         1,
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	body := suite.decode(w)
	assert.Equal(suite.T(), "EVENT", body["type"])
	assert.Nil(suite.T(), body["task"])
	event := body["event"].(map[string]interface{})
	assert.Equal(suite.T(), float64(10), event["max_participants"])
	assert.Equal(suite.T(), true, event["requires_approval"])
	assert.Equal(suite.T(), float64(0), event["current_participants"])
}

func (suite *ItemHandlerTestSuite) TestCreateItem_UnknownType() {
	suite.createTestUser(1, "alice")

	w := suite.do("POST", "/api/items", map[string]interface{}{
		"type":      "MEETING",
		"title":     "Nope",
		"latitude":  43.25,
		"longitude": 76.95,
		"author_id": 1,
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ItemHandlerTestSuite) TestCreateItem_UnknownAuthor() {
	w := suite.do("POST", "/api/items", map[string]interface{}{
		"type":      "TASK",
		"title":     "Orphan",
		"latitude":  43.25,
		"longitude": 76.95,
		"author_id": 42,
	})

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ItemHandlerTestSuite) TestGetItem_NotFound() {
	w := suite.do("GET", "/api/items/no-such-id", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ItemHandlerTestSuite) TestListItems_FilterByType() {
	alice := suite.createTestUser(1, "alice")
	suite.createTestTask(alice.ID, "Task one")
	suite.createTestEvent(alice.ID, "Event one", 0, false)

	w := suite.do("GET", "/api/items?type=TASK", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	body := suite.decode(w)
	items := body["items"].([]interface{})
	assert.Len(suite.T(), items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(suite.T(), "Task one", first["title"])
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(suite.T(), float64(1), pagination["total"])
}

func (suite *ItemHandlerTestSuite) TestUpdateItem_NotAuthor() {
	alice := suite.createTestUser(1, "alice")
	suite.createTestUser(2, "bob")
	item := suite.createTestTask(alice.ID, "Task")

	w := suite.do("PATCH", "/api/items/"+item.ID, map[string]interface{}{
		"author_id": 2,
		"title":     "Hijacked",
	})

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), "Task", suite.reloadItem(item.ID).Title)
}

func (suite *ItemHandlerTestSuite) TestUpdateItem_PatchesFields() {
	alice := suite.createTestUser(1, "alice")
	item := suite.createTestTask(alice.ID, "Task")

	w := suite.do("PATCH", "/api/items/"+item.ID, map[string]interface{}{
		"author_id":   1,
		"title":       "Task, revised",
		"description": "Now with details",
	})

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	updated := suite.reloadItem(item.ID)
	assert.Equal(suite.T(), "Task, revised", updated.Title)
	assert.Equal(suite.T(), "Now with details", updated.Description)
}

func (suite *ItemHandlerTestSuite) TestCompleteTask_RequiresInProgress() {
	alice := suite.createTestUser(1, "alice")
	item := suite.createTestTask(alice.ID, "Task")

	w := suite.do("POST", "/api/items/"+item.ID+"/complete", map[string]interface{}{"user_id": 1})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), models.ItemStatusOpen, suite.itemStatus(item.ID))
}

func (suite *ItemHandlerTestSuite) TestCompleteEvent_FromOpen() {
	alice := suite.createTestUser(1, "alice")
	item := suite.createTestEvent(alice.ID, "Event", 0, false)

	w := suite.do("POST", "/api/items/"+item.ID+"/complete", map[string]interface{}{"user_id": 1})

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), models.ItemStatusCompleted, suite.itemStatus(item.ID))
}

func (suite *ItemHandlerTestSuite) TestCompleteItem_NotAuthor() {
	alice := suite.createTestUser(1, "alice")
	suite.createTestUser(2, "bob")
	item := suite.createTestEvent(alice.ID, "Event", 0, false)

	w := suite.do("POST", "/api/items/"+item.ID+"/complete", map[string]interface{}{"user_id": 2})

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), models.ItemStatusOpen, suite.itemStatus(item.ID))
}

func (suite *ItemHandlerTestSuite) TestCompleteItem_AppendsSystemMessage() {
	alice := suite.createTestUser(1, "alice")
	item := suite.createTestEvent(alice.ID, "Event", 0, false)

	w := suite.do("POST", "/api/items/"+item.ID+"/complete", map[string]interface{}{"user_id": 1})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var messages []models.Message
	suite.Require().NoError(suite.db.Where("item_id = ?", item.ID).Find(&messages).Error)
	suite.Require().Len(messages, 1)
	assert.True(suite.T(), messages[0].IsSystem)
}

func (suite *ItemHandlerTestSuite) TestCancelItem_Terminal() {
	alice := suite.createTestUser(1, "alice")
	item := suite.createTestEvent(alice.ID, "Event", 0, false)

	w := suite.do("POST", "/api/items/"+item.ID+"/cancel", map[string]interface{}{"user_id": 1})
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), models.ItemStatusCancelled, suite.itemStatus(item.ID))

	// Terminal states admit no further transitions
	w = suite.do("POST", "/api/items/"+item.ID+"/cancel", map[string]interface{}{"user_id": 1})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	w = suite.do("POST", "/api/items/"+item.ID+"/complete", map[string]interface{}{"user_id": 1})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), models.ItemStatusCancelled, suite.itemStatus(item.ID))
}

func (suite *ItemHandlerTestSuite) TestDeleteItem_Cascades() {
	alice := suite.createTestUser(1, "alice")
	bob := suite.createTestUser(2, "bob")
	item := suite.createTestTask(alice.ID, "Task")

	w := suite.do("POST", "/api/items/"+item.ID+"/responses", map[string]interface{}{
		"user_id": bob.ID,
		"message": "I can help",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.do("DELETE", "/api/items/"+item.ID+"?authorId=1", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var itemCount, responseCount int64
	suite.db.Model(&models.Item{}).Count(&itemCount)
	suite.db.Model(&models.Response{}).Count(&responseCount)
	assert.Zero(suite.T(), itemCount)
	assert.Zero(suite.T(), responseCount)
}

func (suite *ItemHandlerTestSuite) TestDeleteItem_NotAuthor() {
	alice := suite.createTestUser(1, "alice")
	suite.createTestUser(2, "bob")
	item := suite.createTestTask(alice.ID, "Task")

	w := suite.do("DELETE", "/api/items/"+item.ID+"?authorId=2", nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *ItemHandlerTestSuite) TestNearby_FiltersAndSorts() {
	alice := suite.createTestUser(1, "alice")

	near := suite.createTestTask(alice.ID, "Near")
	suite.db.Model(near).Updates(map[string]interface{}{"latitude": 43.2400, "longitude": 76.8900})

	far := suite.createTestTask(alice.ID, "Far")
	suite.db.Model(far).Updates(map[string]interface{}{"latitude": 43.2600, "longitude": 76.9300})

	remote := suite.createTestTask(alice.ID, "Remote")
	suite.db.Model(remote).Updates(map[string]interface{}{"latitude": 51.1605, "longitude": 71.4704})

	closed := suite.createTestTask(alice.ID, "Closed")
	suite.db.Model(closed).Updates(map[string]interface{}{"latitude": 43.2400, "longitude": 76.8900, "status": models.ItemStatusCancelled})

	w := suite.do("GET", "/api/items/nearby?lat=43.2400&lng=76.8900&radius=10000", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	body := suite.decode(w)
	items := body["items"].([]interface{})
	suite.Require().Len(items, 2)
	assert.Equal(suite.T(), "Near", items[0].(map[string]interface{})["title"])
	assert.Equal(suite.T(), "Far", items[1].(map[string]interface{})["title"])
	assert.Less(suite.T(),
		items[0].(map[string]interface{})["distance"].(float64),
		items[1].(map[string]interface{})["distance"].(float64))
}

func (suite *ItemHandlerTestSuite) TestNearby_MissingCoordinates() {
	w := suite.do("GET", "/api/items/nearby", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func TestItemHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ItemHandlerTestSuite))
}
