package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SmaylovSerikbay/locals-sub000/internal/authz"
	apierrors "github.com/SmaylovSerikbay/locals-sub000/internal/errors"
	"github.com/SmaylovSerikbay/locals-sub000/internal/services"
)

// respondServiceError maps service layer errors onto HTTP responses
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		apierrors.NotFound(c, "Item not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrResponseNotFound):
		apierrors.NotFound(c, "Response not found")
	case errors.Is(err, services.ErrParticipantNotFound):
		apierrors.NotFound(c, "Participant not found")
	case errors.Is(err, authz.ErrForbidden):
		apierrors.Forbidden(c, "")
	case errors.Is(err, authz.ErrConflict):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, authz.ErrCapacityExceeded):
		apierrors.CapacityExceeded(c, "Event is full")
	case errors.Is(err, authz.ErrInvalidState):
		apierrors.BadRequest(c, "Item state does not allow this action")
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidItemType),
		errors.Is(err, services.ErrWrongItemType),
		errors.Is(err, services.ErrMissingCoordinates),
		errors.Is(err, services.ErrInvalidStatusValue),
		errors.Is(err, services.ErrTextRequired),
		errors.Is(err, services.ErrInvalidRating):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
