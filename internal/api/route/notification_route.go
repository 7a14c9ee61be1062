package route

import (
	"time"

	"github.com/bassista/circum/internal/api/controller"
	"github.com/bassista/circum/internal/api/middleware"
	"github.com/bassista/circum/internal/notify"
	"github.com/gin-gonic/gin"
)

func NewNotificationRouter(timeout time.Duration, group *gin.RouterGroup, feed *notify.Feed) {
	group.Use(middleware.RequestTimeout(timeout))

	nc := controller.NewNotificationController(feed)

	group.GET("", nc.Recent)
	group.DELETE("", nc.Clear)
}
