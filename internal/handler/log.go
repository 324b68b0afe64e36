package handler

import (
	"errors"
	"net/http"

	cErr "packetlog/internal/pkg/error"
	"packetlog/internal/pkg/response"
	"packetlog/internal/service"
	"packetlog/internal/telemetry"

	"github.com/gin-gonic/gin"
)

type LogHandler struct {
	trace      *telemetry.Trace
	logService *service.LogService
}

func NewLogHandler(trace *telemetry.Trace, logService *service.LogService) *LogHandler {
	return &LogHandler{trace: trace, logService: logService}
}

// Create
// @Summary      Ingest packet log entries
// @Description  Accepts one log entry object or an array of them. Entries missing required fields are skipped, entries that cannot be mapped are counted as errors; all remaining entries are committed in one transaction.
// @Tags         Logs
// @Accept       json
// @Produce      json
// @Param        Content-Encoding header string false "gzip, deflate, zstd or br"
// @Param        entries body object true "log entry or array of log entries"
// @Success      200 {object} dto.IngestResult
// @Failure      400 {object} response.Response "malformed JSON or body encoding"
// @Failure      413 {object} response.Response "body exceeds INGEST__MAX_BODY_BYTES"
// @Failure      500 {object} response.Response "database commit failed"
// @Router       /logs [post]
func (h *LogHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)

	body, err := c.GetRawData()
	if err != nil {
		end(err)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.AbortWithError(c, cErr.PayloadTooLarge("request body too large"))
			return
		}
		response.AbortWithError(c, cErr.BadRequestBody("unreadable request body"))
		return
	}

	result, err := h.logService.Ingest(ctx, body)
	end(err)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
