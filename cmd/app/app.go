package main

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"packetlog/config"
	"packetlog/internal/cron"
	"packetlog/internal/service"
	"packetlog/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RuntimeInfo struct {
	Env       string        `json:"env"`
	Name      string        `json:"name"`
	Version   string        `json:"version"`
	Schema    string        `json:"schema"`
	GoVersion string        `json:"go_version"`
	StartAt   time.Time     `json:"start_at"`
	Uptime    time.Duration `json:"uptime"`
}

type App struct {
	conf          *config.Configuration
	logger        *zap.Logger
	cronSrv       *cron.Cron
	Router        *gin.Engine
	server        *http.Server
	trace         *telemetry.Trace
	logService    *service.LogService
	healthService *service.HealthService

	startAt time.Time   // 程式啟動時間（非環境變數）
	appInfo RuntimeInfo // 版本/環境快照（來源 = conf.App）
	errCh   chan error
}

func newHttpServer(
	conf *config.Configuration,
	router *gin.Engine,
) *http.Server {
	return &http.Server{
		Addr:              ":" + strconv.FormatUint(uint64(conf.App.Port), 10),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newApp(
	conf *config.Configuration,
	logger *zap.Logger,
	router *gin.Engine,
	server *http.Server,
	trace *telemetry.Trace,
	logService *service.LogService,
	healthService *service.HealthService,
	cronSrv *cron.Cron,
) *App {
	startAt := time.Now()
	return &App{
		conf:          conf,
		logger:        logger,
		Router:        router,
		server:        server,
		trace:         trace,
		logService:    logService,
		healthService: healthService,
		cronSrv:       cronSrv,
		startAt:       startAt,
		appInfo: RuntimeInfo{
			Env:       conf.App.Env,
			Name:      conf.App.Name,
			Version:   conf.App.Version,
			Schema:    conf.Ingest.Schema,
			GoVersion: runtime.Version(),
			StartAt:   startAt,
		},
		errCh: make(chan error, 1),
	}
}

func (a *App) Run() error {
	info := a.appInfo
	a.logger.Info("app runtime info",
		zap.String("env", info.Env),
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("schema", info.Schema),
		zap.String("go_version", info.GoVersion),
		zap.Time("start_at", info.StartAt),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.logService.EnsureTable(ctx); err != nil {
		return err
	}

	a.Router.GET("/version", func(c *gin.Context) {
		resp := a.appInfo
		resp.Uptime = time.Since(a.startAt)
		c.JSON(http.StatusOK, resp)
	})

	if err := a.cronSrv.Run(); err != nil {
		return err
	}
	a.logger.Info("cron server started")

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- err
		}
	}()
	a.logger.Info("server started", zap.Uint32("port", a.conf.App.Port))
	return nil
}

// Err reports a fatal error of the HTTP listener.
func (a *App) Err() <-chan error {
	return a.errCh
}

func (a *App) Stop(ctx context.Context) error {
	a.healthService.SetReady(false)

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	a.logger.Info("http server stopped")

	if err := a.cronSrv.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	a.logger.Info("cron server has been stop")

	if err := a.trace.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
