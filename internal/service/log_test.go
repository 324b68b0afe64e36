package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"packetlog/config"
	"packetlog/internal/database/client"
	fluentd "packetlog/internal/database/fluentd/repository"
	"packetlog/internal/database/sql/dialect"
	"packetlog/internal/database/sql/repository"
	"packetlog/internal/dto"
	"packetlog/internal/ingest"
	cErr "packetlog/internal/pkg/error"
	"packetlog/internal/telemetry"

	"go.uber.org/zap"
)

var receivedAt = time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, schema *ingest.Schema) (*LogService, *sql.DB) {
	t.Helper()
	d := &dialect.SQLite{}
	db, err := client.Open(d, filepath.Join(t.TempDir(), "logs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	conf := &config.Configuration{App: config.App{Name: "packetlog-test", Version: "test"}}
	tr := &telemetry.Trace{}
	repo := repository.NewLogRepository(client.NewSQLClientFromDB(db, d), tr)
	svc := NewLogService(zap.NewNop(), tr, &telemetry.Metric{}, conf, schema, repo,
		fluentd.NewLogRepository(conf, &client.NoopClient{}))
	svc.now = func() time.Time { return receivedAt }

	if err := svc.EnsureTable(context.Background()); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	return svc, db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "logs"`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func assertResult(t *testing.T, got *dto.IngestResult, inserted, skipped, errs int) {
	t.Helper()
	if got == nil {
		t.Fatal("nil result")
	}
	if got.Status != "ok" || got.Inserted != inserted || got.Skipped != skipped || got.Errors != errs {
		t.Fatalf("result = %+v, want ok %d/%d/%d", *got, inserted, skipped, errs)
	}
}

func assertAppError(t *testing.T, err error, status int) {
	t.Helper()
	var appErr *cErr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want *cErr.Error", err)
	}
	if appErr.HttpCode() != status {
		t.Fatalf("http code = %d, want %d", appErr.HttpCode(), status)
	}
}

func TestIngestMixedBatch(t *testing.T) {
	svc, db := newTestService(t, ingest.DualSchema("logs"))

	res, err := svc.Ingest(context.Background(), []byte(`[{"seq":"1","in_mac":"aa"},{"in_mac":"bb"}]`))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	assertResult(t, res, 1, 1, 0)

	var seq, inMac, kv, ts string
	err = db.QueryRow(`SELECT "seq", "in_mac", "kv_fields", "timestamp" FROM "logs"`).Scan(&seq, &inMac, &kv, &ts)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if seq != "1" || inMac != "aa" || kv != "{}" {
		t.Errorf("row = %q %q %q", seq, inMac, kv)
	}
	if ts != receivedAt.Format(time.RFC3339Nano) {
		t.Errorf("timestamp = %q, want %q", ts, receivedAt.Format(time.RFC3339Nano))
	}
	if n := countRows(t, db); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

func TestIngestCountsEveryEntry(t *testing.T) {
	svc, db := newTestService(t, ingest.DualSchema("logs"))

	body := `[{"seq":"1"},{"seq":""},{"seq":{"x":1}},7,null,{"seq":"2","kv_fields":"nope"},{"seq":3}]`
	res, err := svc.Ingest(context.Background(), []byte(body))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	assertResult(t, res, 2, 1, 4)
	if n := countRows(t, db); n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
}

func TestIngestObjectEqualsSingletonArray(t *testing.T) {
	svc, db := newTestService(t, ingest.DualSchema("logs"))

	single, err := svc.Ingest(context.Background(), []byte(`{"seq":"9","out_mac":"cc"}`))
	if err != nil {
		t.Fatalf("Ingest object: %v", err)
	}
	list, err := svc.Ingest(context.Background(), []byte(`[{"seq":"9","out_mac":"cc"}]`))
	if err != nil {
		t.Fatalf("Ingest array: %v", err)
	}
	if *single != *list {
		t.Fatalf("object %+v != array %+v", *single, *list)
	}
	if n := countRows(t, db); n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
}

func TestIngestIgnoresSuppliedTimestamp(t *testing.T) {
	svc, db := newTestService(t, ingest.DualSchema("logs"))

	if _, err := svc.Ingest(context.Background(), []byte(`{"seq":"1","timestamp":"1999-01-01T00:00:00Z"}`)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	var ts string
	if err := db.QueryRow(`SELECT "timestamp" FROM "logs"`).Scan(&ts); err != nil {
		t.Fatal(err)
	}
	if ts != receivedAt.Format(time.RFC3339Nano) {
		t.Fatalf("timestamp = %q", ts)
	}
}

func TestIngestExtractsKVFields(t *testing.T) {
	svc, db := newTestService(t, ingest.DualSchema("logs"))

	_, err := svc.Ingest(context.Background(), []byte(`[
		{"seq":"1","kv_fields":{"POLNO":"P1","ID":"abc","S":"blocked","CacheFind":"hit"}},
		{"seq":"2","kv_fields":{"POLNO":"P2"}}
	]`))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	rows, err := db.Query(`SELECT "policy", "session_id", "description", "log_type" FROM "logs" ORDER BY "id"`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	type row struct{ policy, session, desc, logType sql.NullString }
	var got []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.policy, &r.session, &r.desc, &r.logType); err != nil {
			t.Fatal(err)
		}
		got = append(got, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	first := got[0]
	if first.policy.String != "P1" || first.session.String != "abc" || first.desc.String != "blocked" || first.logType.String != "hit" {
		t.Errorf("first row = %+v", first)
	}
	second := got[1]
	if second.policy.String != "P2" || second.session.Valid || second.desc.Valid || second.logType.Valid {
		t.Errorf("second row = %+v, want only policy set", second)
	}
}

func TestIngestMalformedJSON(t *testing.T) {
	svc, db := newTestService(t, ingest.DualSchema("logs"))

	for _, body := range []string{`{"seq":"1"`, ``, `[{"seq":"1"},]`, "{\"seq\":\"1\",\"in_mac\":\"\xff\xfe\"}"} {
		res, err := svc.Ingest(context.Background(), []byte(body))
		if res != nil {
			t.Errorf("%q: unexpected result %+v", body, *res)
		}
		assertAppError(t, err, http.StatusBadRequest)
	}
	if n := countRows(t, db); n != 0 {
		t.Fatalf("rows = %d, want 0", n)
	}
}

func TestIngestCommitFailureRollsBack(t *testing.T) {
	svc, db := newTestService(t, ingest.DualSchema("logs"))
	_, err := db.Exec(`CREATE TRIGGER reject_boom BEFORE INSERT ON "logs"
		WHEN NEW."seq" = 'boom'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}

	res, err := svc.Ingest(context.Background(), []byte(`[{"seq":"1"},{"seq":"2"},{"seq":"boom"}]`))
	if res != nil {
		t.Fatalf("unexpected result %+v", *res)
	}
	assertAppError(t, err, http.StatusInternalServerError)
	if n := countRows(t, db); n != 0 {
		t.Fatalf("rows = %d, want 0 after rollback", n)
	}

	// the pool is still usable afterwards
	res, err = svc.Ingest(context.Background(), []byte(`{"seq":"3"}`))
	if err != nil {
		t.Fatalf("Ingest after rollback: %v", err)
	}
	assertResult(t, res, 1, 0, 0)
}

func TestIngestNothingStagedSkipsTransaction(t *testing.T) {
	svc, db := newTestService(t, ingest.DualSchema("logs"))
	db.Close()

	res, err := svc.Ingest(context.Background(), []byte(`[{"in_mac":"aa"},"x"]`))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	assertResult(t, res, 0, 1, 1)

	_, err = svc.Ingest(context.Background(), []byte(`{"seq":"1"}`))
	assertAppError(t, err, http.StatusInternalServerError)
}

func TestIngestFlatSchema(t *testing.T) {
	svc, db := newTestService(t, ingest.FlatSchema("logs"))

	body := `[
		{"in_mac":"aa","out_mac":"bb","dir":"in","len":60,"proto":6,"src_ip":"10.0.0.1","dst_ip":"10.0.0.2","src_port":443,"dst_port":"51000"},
		{"in_mac":"aa","out_mac":"bb","dir":"in","len":60,"proto":6,"src_ip":"10.0.0.1","dst_ip":"10.0.0.2","src_port":443},
		{"in_mac":"aa","out_mac":"bb","dir":"in","len":"sixty","proto":6,"src_ip":"10.0.0.1","dst_ip":"10.0.0.2","src_port":443,"dst_port":1}
	]`
	res, err := svc.Ingest(context.Background(), []byte(body))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	assertResult(t, res, 1, 1, 1)

	var (
		direction, desc string
		length, dstPort int
	)
	err = db.QueryRow(`SELECT "direction", "length", "dst_port", "description" FROM "logs"`).Scan(&direction, &length, &dstPort, &desc)
	if err != nil {
		t.Fatal(err)
	}
	if direction != "in" || length != 60 || dstPort != 51000 || desc != "" {
		t.Errorf("row = %q %d %d %q", direction, length, dstPort, desc)
	}
}
