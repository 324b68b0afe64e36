package service

import (
	"context"
	"time"

	"packetlog/config"
	"packetlog/internal/core"
	fluentdModel "packetlog/internal/database/fluentd/model"
	fluentd "packetlog/internal/database/fluentd/repository"
	"packetlog/internal/database/sql/repository"
	"packetlog/internal/dto"
	"packetlog/internal/ingest"
	cErr "packetlog/internal/pkg/error"
	"packetlog/internal/telemetry"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

// entries longer than this are truncated in debug logs
const entryPreviewBytes = 512

type LogService struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	config            *config.Configuration
	schema            *ingest.Schema
	logRepository     *repository.LogRepository
	fluentdRepository *fluentd.LogRepository
	parsers           fastjson.ParserPool
	now               func() time.Time
}

func NewLogService(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	schema *ingest.Schema,
	logRepository *repository.LogRepository,
	fluentdRepository *fluentd.LogRepository,
) *LogService {
	return &LogService{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		config:            config,
		schema:            schema,
		logRepository:     logRepository,
		fluentdRepository: fluentdRepository,
		now:               time.Now,
	}
}

// Schema is the active mapping.
func (service *LogService) Schema() *ingest.Schema {
	return service.schema
}

// EnsureTable creates the table of the active schema if it is missing.
func (service *LogService) EnsureTable(ctx context.Context) error {
	table := service.schema.Table()
	if err := service.logRepository.EnsureTable(ctx, table); err != nil {
		return err
	}
	service.logger.Info("log table ready",
		zap.String("schema", string(service.schema.Name)),
		zap.String("table", table.Name),
		zap.Int("columns", len(table.Columns)+2),
	)
	return nil
}

// Ingest decodes body, maps every entry and commits the staged records in a
// single transaction. Malformed JSON fails the request before any entry is
// looked at; a failed commit persists nothing.
func (service *LogService) Ingest(ctx context.Context, body []byte) (result *dto.IngestResult, err error) {
	ctx, span, end := service.trace.WithSpan(ctx)
	defer func() { end(err) }()
	start := time.Now()
	table := service.schema.Table()
	meta := core.TraceIngestMeta{Schema: string(service.schema.Name), Table: table.Name}
	traceID := span.SpanContext().TraceID().String()

	parser := service.parsers.Get()
	defer service.parsers.Put(parser)

	entries, err := ingest.Decode(parser, body)
	if err != nil {
		service.logger.Error("invalid json payload",
			zap.Error(err),
			zap.Int("bytes", len(body)),
			zap.String("traceId", traceID),
		)
		return nil, cErr.BadRequestBody("invalid JSON payload")
	}
	meta.Entries = len(entries)

	var batch ingest.Batch
	for i, entry := range entries {
		if ce := service.logger.Check(zap.DebugLevel, "processing entry"); ce != nil {
			ce.Write(zap.Int("index", i), zap.String("entry", preview(entry)))
		}
		outcome := service.schema.Map(entry, service.now())
		switch outcome.Status {
		case ingest.Skipped:
			service.logger.Warn("skipped incomplete log entry",
				zap.Int("index", i),
				zap.String("reason", outcome.Reason),
				zap.String("entry", preview(entry)),
			)
		case ingest.Failed:
			service.logger.Error("unmappable log entry",
				zap.Int("index", i),
				zap.String("reason", outcome.Reason),
				zap.String("entry", preview(entry)),
			)
		}
		batch.Add(outcome)
	}
	meta.Inserted, meta.Skipped, meta.Errors = batch.Inserted, batch.Skipped, batch.Errors
	service.trace.ApplyTraceAttributes(span, meta)
	service.observe(&batch)

	if len(batch.Records) > 0 {
		if err := service.logRepository.InsertBatch(ctx, table, batch.Records); err != nil {
			service.logger.Error("database commit failed",
				zap.Error(err),
				zap.Int("rows", len(batch.Records)),
				zap.String("table", table.Name),
				zap.String("traceId", traceID),
			)
			if service.metric.CommitFailTotal != nil {
				service.metric.CommitFailTotal.WithLabelValues(string(service.schema.Name)).Inc()
			}
			service.forward(ctx, traceID, &batch, start, err)
			return nil, cErr.DatabaseError("database commit failed")
		}
		if service.metric.EntriesTotal != nil {
			service.metric.EntriesTotal.WithLabelValues(string(service.schema.Name), core.OutcomeInserted).Add(float64(batch.Inserted))
		}
		service.logger.Info("inserted rows",
			zap.Int("inserted", batch.Inserted),
			zap.Int("skipped", batch.Skipped),
			zap.Int("errors", batch.Errors),
			zap.String("traceId", traceID),
		)
	}
	service.forward(ctx, traceID, &batch, start, nil)

	return &dto.IngestResult{
		Status:   "ok",
		Inserted: batch.Inserted,
		Skipped:  batch.Skipped,
		Errors:   batch.Errors,
	}, nil
}

func (service *LogService) observe(batch *ingest.Batch) {
	schema := string(service.schema.Name)
	if service.metric.BatchSize != nil {
		service.metric.BatchSize.WithLabelValues(schema).Observe(float64(batch.Total()))
	}
	if service.metric.EntriesTotal == nil {
		return
	}
	service.metric.EntriesTotal.WithLabelValues(schema, core.OutcomeSkipped).Add(float64(batch.Skipped))
	service.metric.EntriesTotal.WithLabelValues(schema, core.OutcomeErrors).Add(float64(batch.Errors))
}

// forward ships the batch summary to fluentd; failures are only logged.
func (service *LogService) forward(ctx context.Context, requestID string, batch *ingest.Batch, start time.Time, commitErr error) {
	summary := fluentdModel.IngestLog{
		RequestID:   requestID,
		ProjectName: service.config.App.Name,
		Schema:      string(service.schema.Name),
		Table:       service.schema.Table().Name,
		Entries:     batch.Total(),
		Inserted:    batch.Inserted,
		Skipped:     batch.Skipped,
		Errors:      batch.Errors,
		Committed:   commitErr == nil && batch.Inserted > 0,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	if commitErr != nil {
		summary.Error = commitErr.Error()
	}
	if err := service.fluentdRepository.LogIngest(ctx, summary); err != nil {
		service.logger.Warn("fluentd ingest log failed", zap.Error(err))
	}
}

func preview(v *fastjson.Value) string {
	b := v.MarshalTo(nil)
	if len(b) > entryPreviewBytes {
		return string(b[:entryPreviewBytes]) + "…"
	}
	return string(b)
}
