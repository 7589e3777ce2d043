package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/society-committee-api/internal/errors"
	"github.com/yukikurage/society-committee-api/internal/services"
)

func respondCommitteeError(c *gin.Context, err error) {
	var transitionErr *services.TransitionError

	switch {
	case errors.As(err, &transitionErr):
		apierrors.InternalErrorWithCode(c, apierrors.ErrCodeTransitionFailed, services.ErrTransitionFailed.Error())
	case errors.Is(err, services.ErrBadConfirmation):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeBadConfirmation, err.Error())
	case errors.Is(err, services.ErrEmptyRoster):
		apierrors.UnprocessableEntity(c, apierrors.ErrCodeEmptyRoster, err.Error())
	case errors.Is(err, services.ErrValidation):
		apierrors.UnprocessableEntity(c, apierrors.ErrCodeUnprocessable, err.Error())
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		apierrors.InvalidState(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
