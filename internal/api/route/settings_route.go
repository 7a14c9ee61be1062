package route

import (
	"time"

	"github.com/bassista/circum/internal/api/controller"
	"github.com/bassista/circum/internal/api/middleware"
	"github.com/bassista/circum/internal/settings"
	"github.com/gin-gonic/gin"
)

func NewSettingsRouter(timeout time.Duration, group *gin.RouterGroup, cm *settings.ConfigModel) {
	group.Use(middleware.RequestTimeout(timeout))

	sc := controller.NewSettingsController(cm)

	group.GET("", sc.Get)
	group.PUT("", sc.Replace)
	group.PATCH("", sc.Patch)
	group.DELETE("", sc.Reset)
	group.POST("import", sc.Import)
	group.GET("export", sc.Export)
}
