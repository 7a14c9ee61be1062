package controller

import (
	"net/http"

	"github.com/bassista/circum/internal/config"
	"github.com/gin-gonic/gin"
)

// EventsPath is where the kiosk frontend subscribes to live updates.
const EventsPath = "/api/events"

// ConfigurationResponse represents the configuration response structure for the API.
type ConfigurationResponse struct {
	PollIntervalMs      int64  `json:"pollIntervalMs"`
	EventsPath          string `json:"eventsPath"`
	StorageType         string `json:"storageType"`
	NotificationTTLSecs int    `json:"notificationTtlSecs"`
}

// ConfigurationController handles configuration-related API endpoints.
type ConfigurationController struct {
	config *config.Config
}

// NewConfigurationController creates a new ConfigurationController.
func NewConfigurationController(cfg *config.Config) *ConfigurationController {
	return &ConfigurationController{
		config: cfg,
	}
}

// GetConfiguration returns the runtime configuration the frontend needs.
func (cc *ConfigurationController) GetConfiguration(c *gin.Context) {
	response := ConfigurationResponse{
		PollIntervalMs:      cc.config.Kiosk.PollInterval.Milliseconds(),
		EventsPath:          EventsPath,
		StorageType:         cc.config.Storage.Type,
		NotificationTTLSecs: int(cc.config.Kiosk.NotificationTTL.Seconds()),
	}
	c.JSON(http.StatusOK, response)
}
