package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
)

// MessageHandlerTestSuite covers the item chat log and the webhook ingest
type MessageHandlerTestSuite struct {
	baseSuite
}

func (suite *MessageHandlerTestSuite) TestCreateMessage_Success() {
	alice := suite.createTestUser(1, "alice")
	suite.createTestUser(2, "bob")
	item := suite.createTestTask(alice.ID, "Task")

	w := suite.do("POST", "/api/messages", map[string]interface{}{
		"item_id":   item.ID,
		"sender_id": 2,
		"text":      "Is it still available?",
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	body := suite.decode(w)
	assert.Equal(suite.T(), "Is it still available?", body["text"])
	assert.Equal(suite.T(), false, body["is_system"])
}

func (suite *MessageHandlerTestSuite) TestCreateMessage_EmptyText() {
	alice := suite.createTestUser(1, "alice")
	item := suite.createTestTask(alice.ID, "Task")

	w := suite.do("POST", "/api/messages", map[string]interface{}{
		"item_id":   item.ID,
		"sender_id": 1,
		"text":      "   ",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *MessageHandlerTestSuite) TestCreateMessage_UnknownItem() {
	suite.createTestUser(1, "alice")

	w := suite.do("POST", "/api/messages", map[string]interface{}{
		"item_id":   "no-such-item",
		"sender_id": 1,
		"text":      "hello?",
	})

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *MessageHandlerTestSuite) TestListMessages_Chronological() {
	alice := suite.createTestUser(1, "alice")
	suite.createTestUser(2, "bob")
	item := suite.createTestTask(alice.ID, "Task")

	for _, text := range []string{"first", "second", "third"} {
		w := suite.do("POST", "/api/messages", map[string]interface{}{
			"item_id":   item.ID,
			"sender_id": 2,
			"text":      text,
		})
		suite.Require().Equal(http.StatusCreated, w.Code)
	}

	w := suite.do("GET", "/api/messages?item_id="+item.ID, nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	body := suite.decode(w)
	messages := body["messages"].([]interface{})
	suite.Require().Len(messages, 3)
	assert.Equal(suite.T(), "first", messages[0].(map[string]interface{})["text"])
	assert.Equal(suite.T(), "third", messages[2].(map[string]interface{})["text"])
}

func (suite *MessageHandlerTestSuite) linkThread(item *models.Item, chatID, threadID int64) {
	suite.Require().NoError(suite.db.Model(item).Updates(map[string]interface{}{
		"external_chat_id":   chatID,
		"external_thread_id": threadID,
	}).Error)
}

func (suite *MessageHandlerTestSuite) webhookUpdate(messageID, chatID, threadID, senderID int64, text string) map[string]interface{} {
	return map[string]interface{}{
		"update_id": 1000 + messageID,
		"message": map[string]interface{}{
			"message_id":        messageID,
			"message_thread_id": threadID,
			"from": map[string]interface{}{
				"id":         senderID,
				"is_bot":     false,
				"first_name": "dana",
				"username":   "dana",
			},
			"chat": map[string]interface{}{"id": chatID},
			"text": text,
		},
	}
}

func (suite *MessageHandlerTestSuite) TestWebhook_MirrorsInboundMessage() {
	alice := suite.createTestUser(1, "alice")
	item := suite.createTestTask(alice.ID, "Task")
	suite.linkThread(item, -100200, 77)

	w := suite.do("POST", "/api/bridge/webhook", suite.webhookUpdate(5, -100200, 77, 999, "hello from outside"))
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var message models.Message
	suite.Require().NoError(suite.db.Where("item_id = ?", item.ID).First(&message).Error)
	assert.Equal(suite.T(), "hello from outside", message.Text)
	assert.Equal(suite.T(), uint64(999), message.SenderID)
	suite.Require().NotNil(message.ExternalID)
	assert.Equal(suite.T(), int64(5), *message.ExternalID)

	// The external sender was materialized as a user
	var sender models.User
	suite.Require().NoError(suite.db.First(&sender, "id = ?", 999).Error)
	assert.Equal(suite.T(), "dana", sender.Username)
}

func (suite *MessageHandlerTestSuite) TestWebhook_DuplicateDeliveryDropped() {
	alice := suite.createTestUser(1, "alice")
	item := suite.createTestTask(alice.ID, "Task")
	suite.linkThread(item, -100200, 77)

	update := suite.webhookUpdate(5, -100200, 77, 999, "once")
	suite.Require().Equal(http.StatusOK, suite.do("POST", "/api/bridge/webhook", update).Code)
	suite.Require().Equal(http.StatusOK, suite.do("POST", "/api/bridge/webhook", update).Code)

	var count int64
	suite.db.Model(&models.Message{}).Where("item_id = ?", item.ID).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *MessageHandlerTestSuite) TestWebhook_BotMessagesDropped() {
	alice := suite.createTestUser(1, "alice")
	item := suite.createTestTask(alice.ID, "Task")
	suite.linkThread(item, -100200, 77)

	update := suite.webhookUpdate(6, -100200, 77, 999, "beep")
	update["message"].(map[string]interface{})["from"].(map[string]interface{})["is_bot"] = true

	assert.Equal(suite.T(), http.StatusOK, suite.do("POST", "/api/bridge/webhook", update).Code)

	var count int64
	suite.db.Model(&models.Message{}).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *MessageHandlerTestSuite) TestWebhook_UnknownThreadDropped() {
	suite.createTestUser(1, "alice")

	w := suite.do("POST", "/api/bridge/webhook", suite.webhookUpdate(7, -100200, 12345, 999, "lost"))

	// The platform retries on anything but 200
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Message{}).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *MessageHandlerTestSuite) TestWebhook_MalformedBody() {
	w := suite.do("POST", "/api/bridge/webhook", "not an update")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func TestMessageHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(MessageHandlerTestSuite))
}
