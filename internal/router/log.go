package router

import (
	"packetlog/internal/handler"

	"github.com/gin-gonic/gin"
)

type LogRouter struct {
	logHandler *handler.LogHandler
}

func NewLogRouter(logHandler *handler.LogHandler) *LogRouter {
	return &LogRouter{logHandler: logHandler}
}

func (logRouter *LogRouter) RegisterRoutes(r *gin.Engine) {
	r.POST("/logs", logRouter.logHandler.Create)
}
