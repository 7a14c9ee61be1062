package route

import (
	"time"

	"github.com/bassista/circum/internal/api/controller"
	"github.com/bassista/circum/internal/api/middleware"
	"github.com/bassista/circum/internal/config"
	"github.com/gin-gonic/gin"
)

// NewConfigurationRouter exposes the runtime configuration the kiosk page reads at startup.
func NewConfigurationRouter(timeout time.Duration, group *gin.RouterGroup, cfg *config.Config) {
	group.Use(middleware.RequestTimeout(timeout))

	cc := controller.NewConfigurationController(cfg)

	group.GET("configuration", cc.GetConfiguration)
}
