package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bassista/circum/internal/carousel"
	"github.com/bassista/circum/internal/config"
	"github.com/bassista/circum/internal/logger"
	"github.com/bassista/circum/internal/model"
	"github.com/bassista/circum/internal/notify"
	"github.com/bassista/circum/internal/settings"
	"github.com/bassista/circum/internal/storage"
)

// watcher is implemented by storage backends that can report outside changes.
type watcher interface {
	StartWatcher(ctx context.Context, onChange func()) error
}

// App is the application container (immutable dependencies + lifecycle context).
// It is not a request context; handlers should still use gin's request context.
type App struct {
	Config   *config.Config
	Storage  storage.Storage
	Feed     *notify.Feed
	Settings *settings.ConfigModel
	Carousel *carousel.Rotator

	BaseCtx context.Context
	Cancel  context.CancelFunc
}

// New loads the settings from store and wires the carousel to them. Load problems
// end up in feed, never in the returned error.
func New(cfg *config.Config, store storage.Storage, feed *notify.Feed) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if store == nil {
		return nil, errors.New("storage is nil")
	}
	if feed == nil {
		return nil, errors.New("notification feed is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	var modelOpts []model.Option
	if cfg.Kiosk.IsolateListeners {
		modelOpts = append(modelOpts, model.WithIsolatedListeners())
	}
	cm := settings.NewConfigModel(ctx, store, feed,
		settings.WithKey(cfg.Storage.Key),
		settings.WithModelOptions(modelOpts...),
	)

	return &App{
		Config:   cfg,
		Storage:  store,
		Feed:     feed,
		Settings: cm,
		Carousel: carousel.NewRotator(ctx, cm, cfg.Kiosk.PollInterval),
		BaseCtx:  ctx,
		Cancel:   cancel,
	}, nil
}

// Shutdown stops every background goroutine and releases the storage backend.
func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	a.Cancel()
	if c, ok := a.Storage.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.WithComponent("app").Warnf("closing storage: %v", err)
		}
	}
}

// StartWatchers starts the carousel and, when enabled, reloads the settings whenever
// the storage changes outside this process. Backends that cannot be watched are polled.
func (a *App) StartWatchers() error {
	if a.Config.Storage.Watch {
		if w, ok := a.Storage.(watcher); ok {
			if err := w.StartWatcher(a.BaseCtx, a.reloadSettings); err != nil {
				return fmt.Errorf("cannot start storage watcher: %w", err)
			}
			logger.WithComponent("app").Info("watching storage for settings changes")
		} else if a.Config.Storage.PollInterval > 0 {
			storage.StartPoller(a.BaseCtx, a.Config.Storage.PollInterval, a.reloadSettings)
			logger.WithComponent("app").Infof("polling storage for settings changes every %v", a.Config.Storage.PollInterval)
		} else {
			logger.WithComponent("app").Debugf("storage %T cannot be watched and polling is disabled", a.Storage)
		}
	}

	a.Carousel.Start(a.BaseCtx)
	return nil
}

func (a *App) reloadSettings() {
	_, err := a.Settings.Reload()
	switch {
	case err == nil:
	case errors.Is(err, settings.ErrNothingStored):
		logger.WithComponent("app").Trace("no stored settings to reload")
	default:
		logger.WithComponent("app").Warnf("settings not reloaded: %v", err)
	}
}
