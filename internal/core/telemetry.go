package core

const ContextTraceKey = "telemetry_trace_ctx"

// ContextContentEncodingKey holds the Content-Encoding the body arrived with.
const ContextContentEncodingKey = "request_content_encoding"

// Span names shared by middleware.
type TraceSpanName string

const (
	SpanHttpRequest          TraceSpanName = "http_request"
	SpanLoggerMiddleware     TraceSpanName = "logger_middleware"
	SpanCorsMiddleware       TraceSpanName = "cors_middleware"
	SpanDecompressMiddleware TraceSpanName = "decompress_middleware"
)

type MetricName string

const (
	MetricHttpRequestsTotal   MetricName = "requests_total"
	MetricHttpRequestDuration MetricName = "request_duration_seconds"
	MetricEntriesTotal        MetricName = "ingest_entries_total"
	MetricCommitFailTotal     MetricName = "ingest_commit_fail_total"
	MetricBatchSize           MetricName = "ingest_batch_size"
)

type MetricLabelName string

const (
	MetricLabelEndpoint MetricLabelName = "endpoint"
	MetricLabelStatus   MetricLabelName = "status"
	MetricLabelOutcome  MetricLabelName = "outcome"
	MetricLabelSchema   MetricLabelName = "schema"
)

// Entry outcomes, used as the outcome label.
const (
	OutcomeInserted = "inserted"
	OutcomeSkipped  = "skipped"
	OutcomeErrors   = "errors"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.latency_ms"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"error.message"`
	Stack      string  `trace:"error.stack"`
}

type TraceErrorMeta struct {
	Code       int     `trace:"error.code"`
	Message    string  `trace:"error.message"`
	Detail     string  `trace:"error.detail"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
}

type TraceHttpServerMeta struct {
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	UrlPath           string `trace:"http.request.path"`
	UrlScheme         string `trace:"http.request.url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanTraceID       string `trace:"span.trace_id"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
}

type TraceDecompressMeta struct {
	Encoding     string `trace:"http.request.content_encoding"`
	CompressedB  int    `trace:"http.request.body.compressed_size"`
	DecodedBytes int    `trace:"http.request.body.size"`
}

// Attached to the ingest service span.
type TraceIngestMeta struct {
	Schema   string `trace:"ingest.schema"`
	Table    string `trace:"ingest.table"`
	Entries  int    `trace:"ingest.entries"`
	Inserted int    `trace:"ingest.inserted"`
	Skipped  int    `trace:"ingest.skipped"`
	Errors   int    `trace:"ingest.errors"`
}

// Attached to the repository span.
type TraceBatchWriteMeta struct {
	Driver string `trace:"db.system"`
	Table  string `trace:"db.sql.table"`
	Rows   int    `trace:"db.rows"`
}
