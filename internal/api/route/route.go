package route

import (
	"net/http"

	"github.com/bassista/circum/internal/api/middleware"
	"github.com/bassista/circum/internal/app"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes builds the engine serving the kiosk API and UI.
func SetupRoutes(appCtx *app.App, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.HoneybadgerMiddleware(logger))
	r.Use(gin.LoggerWithWriter(logger.Writer()))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(appCtx.Config.Server.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "UP",
		})
	})

	api := r.Group("/api")
	timeout := appCtx.Config.Server.RequestTimeout

	NewConfigurationRouter(timeout, api.Group(""), appCtx.Config)
	NewSettingsRouter(timeout, api.Group("settings"), appCtx.Settings)
	NewCarouselRouter(timeout, api.Group("carousel"), appCtx.Carousel)
	NewNotificationRouter(timeout, api.Group("notifications"), appCtx.Feed)
	// no request timeout: the stream lives as long as the client
	NewEventsRouter(api.Group("events"), appCtx)

	NewUIRouter(r, DefaultUIDir)
	return r
}
