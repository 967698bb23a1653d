package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SmaylovSerikbay/locals-sub000/internal/bridge"
	"github.com/SmaylovSerikbay/locals-sub000/internal/services"
	"github.com/SmaylovSerikbay/locals-sub000/pkg/logger"
)

// BridgeHandler receives webhook updates from the external chat platform
type BridgeHandler struct {
	bridge *services.BridgeService
}

// NewBridgeHandler creates a new BridgeHandler
func NewBridgeHandler(bridgeService *services.BridgeService) *BridgeHandler {
	return &BridgeHandler{bridge: bridgeService}
}

// Webhook handles POST /bridge/webhook. The platform retries on non-200
// responses, so every outcome acknowledges with 200; failures are logged.
func (h *BridgeHandler) Webhook(c *gin.Context) {
	var update bridge.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		logger.Debug(c.Request.Context(), "bridge webhook: malformed update", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.bridge.HandleUpdate(c.Request.Context(), update); err != nil {
		logger.Warn(c.Request.Context(), "bridge webhook: update not processed", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
