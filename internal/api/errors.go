package api

import (
	"errors"
	"net/http"

	"RefDesk/internal/model"
	"RefDesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// writeError maps domain errors onto transport status codes. Anything
// unmapped is an infrastructure failure: logged and returned as 500
// without leaking internals.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var invalid *model.InvalidTransitionError

	switch {
	case errors.Is(err, service.ErrNotAssignedReferee):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMatchNotFound),
		errors.Is(err, service.ErrRefereeNotFound),
		errors.Is(err, service.ErrSettlementNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &invalid),
		errors.Is(err, service.ErrMatchAlreadySettled),
		errors.Is(err, service.ErrSettlementAlreadyPaid),
		errors.Is(err, service.ErrRefereeHasHistory),
		errors.Is(err, service.ErrRefereeRetired),
		errors.Is(err, service.ErrRefereeBusy),
		errors.Is(err, service.ErrMatchDateInPast):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTierNotConfigured):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
