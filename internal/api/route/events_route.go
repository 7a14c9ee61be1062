package route

import (
	"github.com/bassista/circum/internal/api/controller"
	"github.com/bassista/circum/internal/app"
	"github.com/gin-gonic/gin"
)

// NewEventsRouter exposes the server-sent events stream.
func NewEventsRouter(group *gin.RouterGroup, appCtx *app.App) {
	ec := controller.NewEventsController(appCtx.BaseCtx, appCtx.Settings, appCtx.Carousel.Frames())

	group.GET("", ec.Stream)
}
