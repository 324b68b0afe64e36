package router

import (
	"net/http"

	docs "packetlog/cmd/docs"
	"packetlog/config"
	"packetlog/internal/middleware"
	cErr "packetlog/internal/pkg/error"
	"packetlog/internal/pkg/response"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var ProviderSet = wire.NewSet(
	NewRouter,
	NewLogRouter,
	NewHealthRouter,
)

// 透過依賴注入組裝 gin.Engine
func NewRouter(
	config *config.Configuration,
	traceEntry *middleware.TraceEntry,
	recovery *middleware.Recovery,
	cors *middleware.Cors,
	decompress *middleware.Decompress,
	logger *middleware.Logger,
	logRouter *LogRouter,
	healthRouter *HealthRouter,
) *gin.Engine {

	switch config.App.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(func(c *gin.Context) {
		if v := config.App.Version; v != "" {
			c.Writer.Header().Set("X-App-Version", v)
		}
		c.Next()
	})
	router.Use(traceEntry.Handler())
	router.Use(recovery.ErrorHandler())
	router.Use(cors.CorsHandler())
	router.Use(decompress.Handler())
	router.Use(logger.LoggerHandler())

	router.NoRoute(func(c *gin.Context) {
		response.AbortWithError(c, cErr.NotFound("no route for "+c.Request.Method+" "+c.Request.URL.Path))
	})
	router.NoMethod(func(c *gin.Context) {
		response.AbortWithError(c, cErr.MethodNotAllowed(c.Request.Method+" is not allowed on "+c.Request.URL.Path))
	})

	router.GET("/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Response{
			Code:        cErr.SUCCESS,
			Data:        "ok",
			Message:     "success",
			Description: "service is alive",
		})
	})

	if config.Telemetry.Metric.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if config.App.SwaggerEnabled {
		router.GET("/swagger/*any", func(c *gin.Context) {
			docs.SwaggerInfo.Host = c.Request.Host
			docs.SwaggerInfo.Version = config.App.Version
			if config.App.Env == "production" {
				docs.SwaggerInfo.Schemes = []string{"https"}
			}
		}, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	logRouter.RegisterRoutes(router)
	healthRouter.RegisterRoutes(router)
	if config.App.Env != "production" {
		pprof.Register(router)
	}
	return router
}
