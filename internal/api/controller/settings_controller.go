package controller

import (
	"net/http"

	"github.com/bassista/circum/internal/settings"
	"github.com/gin-gonic/gin"
)

// ExportFileName is the attachment name used by Export.
const ExportFileName = "circum-settings.json"

type SettingsController struct {
	model *settings.ConfigModel
}

func NewSettingsController(cm *settings.ConfigModel) *SettingsController {
	return &SettingsController{model: cm}
}

// Get returns the current settings.
func (sc *SettingsController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, sc.model.Config())
}

// Replace validates the body as a complete settings document, applies and saves it.
func (sc *SettingsController) Replace(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return
	}

	v := settings.AssertSettings(raw)
	if !v.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Reason()})
		return
	}
	if !awaitApplied(c, sc.model.Update(v.Settings())) {
		return
	}
	c.JSON(http.StatusOK, sc.model.Config())
}

// Patch merges the known fields of the body into the current settings.
func (sc *SettingsController) Patch(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return
	}

	s, p, err := sc.model.Patch(raw)
	if err != nil {
		if settings.IsInvalid(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}
	if !awaitApplied(c, p) {
		return
	}
	c.JSON(http.StatusOK, s)
}

// Import accepts an exported settings file. The outcome is also published as a
// notification.
func (sc *SettingsController) Import(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return
	}

	p, err := sc.model.Import(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": settings.MsgImportFailed})
		return
	}
	if !awaitApplied(c, p) {
		return
	}
	c.JSON(http.StatusOK, sc.model.Config())
}

// Export serves the settings as a downloadable JSON file.
func (sc *SettingsController) Export(c *gin.Context) {
	payload, err := sc.model.Export()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export settings"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+ExportFileName+`"`)
	c.Data(http.StatusOK, "application/json", payload)
}

// Reset drops the stored settings and goes back to the defaults.
func (sc *SettingsController) Reset(c *gin.Context) {
	if !awaitApplied(c, sc.model.Reset()) {
		return
	}
	c.JSON(http.StatusOK, sc.model.Config())
}
