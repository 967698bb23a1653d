package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SmaylovSerikbay/locals-sub000/internal/constants"
	"github.com/SmaylovSerikbay/locals-sub000/internal/database"
	apierrors "github.com/SmaylovSerikbay/locals-sub000/internal/errors"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
)

// RequireItem loads the item addressed by the :id path parameter and stores
// it in the request context. Responds 404 when the item does not exist.
func RequireItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID := c.Param("id")
		if itemID == "" {
			apierrors.BadRequest(c, "Item ID is required")
			c.Abort()
			return
		}

		var item models.Item
		err := database.GetDB().Preload("Author").First(&item, "id = ?", itemID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.NotFound(c, "Item not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyItem, &item)
		c.Next()
	}
}

// ItemFromContext retrieves the item loaded by RequireItem
func ItemFromContext(c *gin.Context) *models.Item {
	value, exists := c.Get(constants.ContextKeyItem)
	if !exists {
		return nil
	}
	item, ok := value.(*models.Item)
	if !ok {
		return nil
	}
	return item
}
