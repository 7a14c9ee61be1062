package route

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultUIDir holds the kiosk page and the bundled frames (clock, weather).
const DefaultUIDir = "./ui"

// NewUIRouter serves the kiosk page at / and the bundled frame apps under /frames.
// Unknown /api paths get a JSON 404, anything else falls back to the kiosk page.
func NewUIRouter(r *gin.Engine, dir string) {
	r.Static("/frames", filepath.Join(dir, "frames"))
	r.Static("/assets", filepath.Join(dir, "assets"))

	index := filepath.Join(dir, "index.html")
	r.GET("/", func(c *gin.Context) {
		c.File(index)
	})

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(index)
	})
}
