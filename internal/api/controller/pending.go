package controller

import (
	"context"
	"errors"

	"github.com/bassista/circum/internal/logger"
	"github.com/bassista/circum/internal/model"
	"github.com/gin-gonic/gin"
)

// awaitApplied waits until listeners have seen a change so the response reflects it.
// It returns false when the request context ended first; the timeout middleware then
// writes the response. Listener failures do not undo a change and are only logged.
func awaitApplied(c *gin.Context, p *model.Pending) bool {
	if p == nil {
		return true
	}
	err := p.Wait(c.Request.Context())
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if err != nil {
		logger.WithComponent("api").Warnf("listener failed while applying change: %v", err)
	}
	return true
}
