package controller

import (
	"net/http"

	"github.com/bassista/circum/internal/notify"
	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	feed *notify.Feed
}

func NewNotificationController(feed *notify.Feed) *NotificationController {
	return &NotificationController{feed: feed}
}

// Recent lists the notifications that have not expired yet, oldest first.
func (nc *NotificationController) Recent(c *gin.Context) {
	c.JSON(http.StatusOK, nc.feed.Recent())
}

// Clear dismisses every notification.
func (nc *NotificationController) Clear(c *gin.Context) {
	nc.feed.Clear()
	c.Status(http.StatusNoContent)
}
