package controller

import (
	"net/http"

	"github.com/bassista/circum/internal/carousel"
	"github.com/gin-gonic/gin"
)

type CarouselController struct {
	rotator *carousel.Rotator
}

func NewCarouselController(r *carousel.Rotator) *CarouselController {
	return &CarouselController{rotator: r}
}

// Current returns the frame on screen.
func (cc *CarouselController) Current(c *gin.Context) {
	c.JSON(http.StatusOK, cc.rotator.Current())
}

// Next skips to the following site.
func (cc *CarouselController) Next(c *gin.Context) {
	if !awaitApplied(c, cc.rotator.Next()) {
		return
	}
	c.JSON(http.StatusOK, cc.rotator.Current())
}

// Refresh asks every frame to reload.
func (cc *CarouselController) Refresh(c *gin.Context) {
	if !awaitApplied(c, cc.rotator.RefreshFrames()) {
		return
	}
	c.JSON(http.StatusOK, cc.rotator.Current())
}
