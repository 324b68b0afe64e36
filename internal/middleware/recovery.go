package middleware

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"packetlog/config"
	"packetlog/internal/core"
	cErr "packetlog/internal/pkg/error"
	res "packetlog/internal/pkg/response"
	"packetlog/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Recovery renders errors attached with response.AbortWithError as the
// response envelope and turns panics into 500s.
type Recovery struct {
	logger *zap.Logger
	trace  *telemetry.Trace
	config *config.Configuration
}

func NewRecovery(
	logger *zap.Logger,
	trace *telemetry.Trace,
	config *config.Configuration,
) *Recovery {
	return &Recovery{
		logger: logger,
		trace:  trace,
		config: config,
	}
}

func (middleware *Recovery) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestTime := time.Now()
		if startTime, exists := c.Get("requestDuration"); exists {
			if t, ok := startTime.(time.Time); ok {
				requestTime = t
			}
		}
		requestID, err := uuid.NewV7()
		if err != nil {
			requestID = uuid.New()
		}
		c.Header("X-Request-Id", requestID.String())

		// panic recover 必須在 c.Next() 之前註冊
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			duration := time.Since(requestTime)
			span := trace.SpanFromContext(middleware.trace.GetTraceContext(c))
			meta := core.TracePanicMeta{
				Path:       c.Request.URL.Path,
				Method:     c.Request.Method,
				ClientIP:   c.ClientIP(),
				UserAgent:  c.Request.UserAgent(),
				DurationMs: float64(duration.Milliseconds()),
				Message:    toSafeString(fmt.Sprint(rec)),
				Stack:      toSafeString(string(debug.Stack())),
				Status:     http.StatusInternalServerError,
			}
			middleware.trace.ApplyTraceAttributes(span, meta)

			middleware.logger.Error("[PANIC] Recovered",
				zap.String("path", meta.Path),
				zap.String("method", meta.Method),
				zap.String("client_ip", meta.ClientIP),
				zap.Duration("duration", duration),
				zap.String("panic", meta.Message),
				zap.String("stacktrace", meta.Stack),
				zap.String("requestId", requestID.String()),
				zap.String("traceId", span.SpanContext().TraceID().String()),
			)
			if !c.Writer.Written() {
				res.FailByErr(c, requestID.String(), cErr.InternalServer("unexpected panic"))
			}
			c.Abort()
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		duration := time.Since(requestTime)
		span := trace.SpanFromContext(middleware.trace.GetTraceContext(c))

		// 找第一個 *cErr.Error
		for _, e := range c.Errors {
			appErr, ok := e.Err.(*cErr.Error)
			if !ok {
				continue
			}
			middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
				Code:       appErr.ErrorCode(),
				Message:    appErr.Error(),
				Detail:     appErr.ErrorDesc(),
				Status:     appErr.HttpCode(),
				DurationMs: float64(duration.Milliseconds()),
			})
			middleware.logger.Warn(appErr.Error(),
				zap.Int("code", appErr.ErrorCode()),
				zap.Int("status", appErr.HttpCode()),
				zap.String("description", appErr.ErrorDesc()),
				zap.Duration("duration", duration),
				zap.String("requestId", requestID.String()),
				zap.String("traceId", span.SpanContext().TraceID().String()),
			)
			res.FailByErr(c, requestID.String(), appErr)
			return
		}

		unknown := c.Errors.String()
		middleware.logger.Error("[ERROR] unknown",
			zap.String("error", unknown),
			zap.Duration("duration", duration),
			zap.String("requestId", requestID.String()),
		)
		res.Fail(c, requestID.String(), http.StatusInternalServerError, cErr.INTERNAL_ERROR, "unknown-error", toSafeString(unknown))
	}
}

// toSafeString truncates valid UTF-8 and base64-encodes anything else.
func toSafeString(s string) string {
	const max = 8000
	if utf8.ValidString(s) {
		if len(s) > max {
			return s[:max] + "…"
		}
		return s
	}
	b := []byte(s)
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}
