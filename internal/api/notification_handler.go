package api

import (
	"net/http"
	"strconv"

	"RefDesk/internal/repository"
	"RefDesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NotificationHandler exposes the notification feeds.
type NotificationHandler struct {
	notifier *service.Notifier
	logger   *logrus.Logger
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(db *gorm.DB, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifier: service.NewNotifier(repository.NewNotificationRepository(db), logger),
		logger:   logger,
	}
}

// Feed returns a referee's notifications, or the admin broadcast feed
// when no referee_id is given.
// GET /api/notifications?referee_id=
func (h *NotificationHandler) Feed(c *gin.Context) {
	if r := c.Query("referee_id"); r != "" {
		refereeID, err := strconv.ParseUint(r, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "referee_id must be numeric"})
			return
		}
		list, err := h.notifier.RefereeFeed(c.Request.Context(), refereeID)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": list})
		return
	}

	list, err := h.notifier.AdminFeed(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}
