package router

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"packetlog/config"
	"packetlog/internal/database/client"
	fluentdRepo "packetlog/internal/database/fluentd/repository"
	"packetlog/internal/database/sql/dialect"
	sqlRepo "packetlog/internal/database/sql/repository"
	"packetlog/internal/handler"
	"packetlog/internal/ingest"
	"packetlog/internal/middleware"
	cErr "packetlog/internal/pkg/error"
	"packetlog/internal/pkg/response"
	"packetlog/internal/service"
	"packetlog/internal/telemetry"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

type testServer struct {
	engine *gin.Engine
	db     *sql.DB
}

func newTestServer(t *testing.T, schema string, maxBody int64) *testServer {
	t.Helper()
	conf := &config.Configuration{
		App:    config.App{Env: "test", Name: "packetlog-test", Version: "1.2.3", Port: 10000},
		Ingest: config.Ingest{Schema: schema, Table: "logs", MaxBodyBytes: maxBody},
	}
	logger := zap.NewNop()
	tr := &telemetry.Trace{}
	metric := telemetry.NewMetric(conf)

	d := &dialect.SQLite{}
	db, err := client.Open(d, filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	sch, err := ingest.NewSchema(conf)
	if err != nil {
		t.Fatal(err)
	}
	fluentd := fluentdRepo.NewLogRepository(conf, &client.NoopClient{})
	repo := sqlRepo.NewLogRepository(client.NewSQLClientFromDB(db, d), tr)
	logService := service.NewLogService(logger, tr, metric, conf, sch, repo, fluentd)
	if err := logService.EnsureTable(context.Background()); err != nil {
		t.Fatal(err)
	}

	engine := NewRouter(conf,
		middleware.NewTraceEntry(tr, metric, conf),
		middleware.NewRecovery(logger, tr, conf),
		middleware.NewCors(tr),
		middleware.NewDecompress(logger, tr, conf),
		middleware.NewLogger(logger, tr, conf, fluentd),
		NewLogRouter(handler.NewLogHandler(tr, logService)),
		NewHealthRouter(handler.NewHealthHandler(service.NewHealthService())),
	)
	return &testServer{engine: engine, db: db}
}

func (s *testServer) do(t *testing.T, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) rows(t *testing.T) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM "logs"`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return got
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var env response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if env.RequestID == "" {
		t.Error("envelope without requestID")
	}
	return env
}

func assertCounts(t *testing.T, w *httptest.ResponseRecorder, inserted, skipped, errs float64) {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got := decodeResult(t, w)
	want := map[string]any{"status": "ok", "inserted": inserted, "skipped": skipped, "errors": errs}
	if len(got) != len(want) {
		t.Fatalf("body = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("body = %v, want %v", got, want)
		}
	}
}

func TestPostLogs(t *testing.T) {
	s := newTestServer(t, "dual", 1<<20)

	w := s.do(t, http.MethodPost, "/logs", []byte(`[{"seq":"1","in_mac":"aa"},{"in_mac":"bb"}]`), nil)
	assertCounts(t, w, 1, 1, 0)
	if got := w.Header().Get("X-App-Version"); got != "1.2.3" {
		t.Errorf("X-App-Version = %q", got)
	}
	if n := s.rows(t); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}

	w = s.do(t, http.MethodPost, "/logs", []byte(`{"seq":"2"}`), nil)
	assertCounts(t, w, 1, 0, 0)

	w = s.do(t, http.MethodPost, "/logs", []byte(`[]`), nil)
	assertCounts(t, w, 0, 0, 0)
}

func TestPostLogsFlat(t *testing.T) {
	s := newTestServer(t, "flat", 1<<20)
	body := `[{"in_mac":"aa","out_mac":"bb","dir":"in","len":60,"proto":6,"src_ip":"a","dst_ip":"b","src_port":1,"dst_port":2},` +
		`{"in_mac":"aa"},{"in_mac":"aa","out_mac":"bb","dir":"in","len":[],"proto":6,"src_ip":"a","dst_ip":"b","src_port":1,"dst_port":2}]`
	assertCounts(t, s.do(t, http.MethodPost, "/logs", []byte(body), nil), 1, 1, 1)
}

func TestPostLogsMalformed(t *testing.T) {
	s := newTestServer(t, "dual", 1<<20)

	w := s.do(t, http.MethodPost, "/logs", []byte(`{"seq":`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Code != cErr.BAD_REQUEST_BODY || env.Message != "bad-request-body" || env.Data != nil {
		t.Errorf("envelope = %+v", env)
	}
	if n := s.rows(t); n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
}

func TestPostLogsCommitFailure(t *testing.T) {
	s := newTestServer(t, "dual", 1<<20)
	if _, err := s.db.Exec(`CREATE TRIGGER reject_boom BEFORE INSERT ON "logs" WHEN NEW."seq" = 'boom' BEGIN SELECT RAISE(ABORT, 'rejected'); END`); err != nil {
		t.Fatal(err)
	}

	w := s.do(t, http.MethodPost, "/logs", []byte(`[{"seq":"1"},{"seq":"boom"}]`), nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if env := decodeEnvelope(t, w); env.Code != cErr.DATABASE_ERROR || env.Message != "database-error" {
		t.Errorf("envelope = %+v", env)
	}
	if strings.Contains(w.Body.String(), `"inserted"`) {
		t.Errorf("failure must not carry counts: %s", w.Body.String())
	}
	if n := s.rows(t); n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
}

func TestPostLogsCompressed(t *testing.T) {
	s := newTestServer(t, "dual", 1<<20)
	payload := []byte(`[{"seq":"1"},{"seq":"2"},{"in_mac":"x"}]`)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write(payload)
	gw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write(payload)
	bw.Close()

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	zs := enc.EncodeAll(payload, nil)
	enc.Close()

	cases := []struct {
		name     string
		body     []byte
		encoding string
	}{
		{"gzip", gz.Bytes(), "gzip"},
		{"gzip sniffed", gz.Bytes(), ""},
		{"brotli", br.Bytes(), "br"},
		{"zstd", zs, "zstd"},
		{"zstd sniffed", zs, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.encoding != "" {
				headers["Content-Encoding"] = tc.encoding
			}
			assertCounts(t, s.do(t, http.MethodPost, "/logs", tc.body, headers), 2, 1, 0)
		})
	}
}

func TestPostLogsBadEncoding(t *testing.T) {
	s := newTestServer(t, "dual", 1<<20)

	for _, encoding := range []string{"gzip", "compress"} {
		w := s.do(t, http.MethodPost, "/logs", []byte(`{"seq":"1"}`), map[string]string{"Content-Encoding": encoding})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, body %s", encoding, w.Code, w.Body.String())
		}
		if env := decodeEnvelope(t, w); env.Code != cErr.BAD_REQUEST_ENCODING {
			t.Errorf("%s: envelope = %+v", encoding, env)
		}
	}
}

func TestPostLogsTooLarge(t *testing.T) {
	s := newTestServer(t, "dual", 64)

	body := []byte(`[{"seq":"1","in_mac":"` + strings.Repeat("a", 128) + `"}]`)
	w := s.do(t, http.MethodPost, "/logs", body, nil)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if env := decodeEnvelope(t, w); env.Code != cErr.PAYLOAD_TOO_LARGE {
		t.Errorf("envelope = %+v", env)
	}

	// the decoded size is limited too
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write(body)
	gw.Close()
	if gz.Len() > 64 {
		t.Skipf("compressed body is %d bytes", gz.Len())
	}
	w = s.do(t, http.MethodPost, "/logs", gz.Bytes(), map[string]string{"Content-Encoding": "gzip"})
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("compressed: status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestRoutingErrors(t *testing.T) {
	s := newTestServer(t, "dual", 1<<20)

	w := s.do(t, http.MethodGet, "/logs", nil, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /logs status = %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != cErr.METHOD_NOT_ALLOWED {
		t.Errorf("envelope = %+v", env)
	}

	w = s.do(t, http.MethodPost, "/nope", []byte(`{}`), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("POST /nope status = %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != cErr.NOT_FOUND {
		t.Errorf("envelope = %+v", env)
	}
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t, "dual", 1<<20)

	if w := s.do(t, http.MethodGet, "/health-check", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("/health-check status = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/health/liveness", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("/health/liveness status = %d", w.Code)
	}
	w := s.do(t, http.MethodGet, "/health/readiness", nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("/health/readiness status = %d before the first store ping", w.Code)
	}
	if got := decodeResult(t, w); got["reason"] != "starting" {
		t.Errorf("readiness body = %v", got)
	}
}
