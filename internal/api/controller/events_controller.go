package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/bassista/circum/internal/carousel"
	"github.com/bassista/circum/internal/logger"
	"github.com/bassista/circum/internal/model"
	"github.com/bassista/circum/internal/settings"
	"github.com/gin-gonic/gin"
)

const (
	EventSettings = "settings"
	EventFrame    = "frame"

	eventBuffer = 16
)

type event struct {
	name string
	data any
}

// EventsController streams settings and carousel changes as server-sent events.
type EventsController struct {
	baseCtx  context.Context
	settings *settings.ConfigModel
	frames   *model.Model[carousel.Frame]
}

func NewEventsController(baseCtx context.Context, cm *settings.ConfigModel, frames *model.Model[carousel.Frame]) *EventsController {
	return &EventsController{baseCtx: baseCtx, settings: cm, frames: frames}
}

// Stream sends the current state first, then one event per model refresh until the
// client disconnects or the server shuts down. A client that cannot keep up misses
// events rather than slowing the models down.
func (ec *EventsController) Stream(c *gin.Context) {
	log := logger.WithComponent("events")
	events := make(chan event, eventBuffer)
	push := func(e event) {
		select {
		case events <- e:
		default:
			log.Debugf("client too slow, %s event dropped", e.name)
		}
	}

	settingsID := ec.settings.AddListener(func(s settings.Settings, err error) {
		if err == nil {
			push(event{EventSettings, s})
		}
	})
	defer ec.settings.RemoveListener(settingsID)

	frameID := ec.frames.AddListener(func(f carousel.Frame, err error) {
		if err == nil {
			push(event{EventFrame, f})
		}
	})
	defer ec.frames.RemoveListener(frameID)

	push(event{EventSettings, ec.settings.Config()})
	if f, err := ec.frames.Data(); err == nil {
		push(event{EventFrame, f})
	}

	// the server write timeout would cut the stream
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		log.Tracef("write deadline kept: %v", err)
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	log.Debugf("client %s subscribed", c.ClientIP())
	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debugf("client %s disconnected", c.ClientIP())
			return
		case <-ec.baseCtx.Done():
			return
		case e := <-events:
			c.SSEvent(e.name, e.data)
			c.Writer.Flush()
		}
	}
}
