package route

import (
	"time"

	"github.com/bassista/circum/internal/api/controller"
	"github.com/bassista/circum/internal/api/middleware"
	"github.com/bassista/circum/internal/carousel"
	"github.com/gin-gonic/gin"
)

func NewCarouselRouter(timeout time.Duration, group *gin.RouterGroup, rotator *carousel.Rotator) {
	group.Use(middleware.RequestTimeout(timeout))

	cc := controller.NewCarouselController(rotator)

	group.GET("", cc.Current)
	group.POST("next", cc.Next)
	group.POST("refresh", cc.Refresh)
}
