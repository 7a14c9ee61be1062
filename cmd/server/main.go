package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	route "github.com/bassista/circum/internal/api/route"
	appctx "github.com/bassista/circum/internal/app"
	"github.com/bassista/circum/internal/config"
	"github.com/bassista/circum/internal/logger"
	"github.com/bassista/circum/internal/notify"
	"github.com/bassista/circum/internal/storage"
	"github.com/gin-gonic/gin"

	"github.com/enrichman/httpgrace"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithComponent("main").Fatalf("configuration error: %v", err)
	}

	if !logger.SetLevel(cfg.Misc.LogLevel) {
		logger.WithComponent("main").Warnf("invalid log level '%s', using 'info'", cfg.Misc.LogLevel)
	}
	logger.WithComponent("main").Debugf("log level set to: %s", logger.Logger.GetLevel())
	logger.WithComponent("main").Infof("App will run on port: %d", cfg.Server.Port)

	store, err := storage.NewStorageFromConfig(cfg.Storage)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init storage: %v", err)
	}
	logger.WithComponent("main").Infof("settings stored in %s backend under key %q", cfg.Storage.Type, cfg.Storage.Key)

	app, err := appctx.New(cfg, store, notify.NewFeed(cfg.Kiosk.NotificationTTL))
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init app: %v", err)
	}
	defer app.Shutdown()

	if err := app.StartWatchers(); err != nil {
		logger.WithComponent("main").Fatalf("cannot start watchers: %v", err)
	}

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	r := route.SetupRoutes(app, logger.Logger)
	srv := createGraceHttpServer(app.BaseCtx, app.Cancel, "kiosk-server", app.Config.Server, r)

	if err := srv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithComponent("main").Fatal(err)
	}
}

// beforeShutdown cancels the base context so long-lived event streams end before the
// server waits for in-flight requests.
func beforeShutdown(cancel context.CancelFunc, name string) func() {
	return func() {
		logger.WithComponent("http").Infof("Shutting down %s server....", name)
		cancel()
	}
}

func createGraceHttpServer(ctx context.Context, cancel context.CancelFunc, name string, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	srv := httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(beforeShutdown(cancel, name)),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), fmt.Sprintf("[%s] ", name), log.LstdFlags)
			},
		),
	)
	return srv
}
