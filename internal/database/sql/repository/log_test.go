package repository

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"packetlog/internal/database/client"
	"packetlog/internal/database/sql/dialect"
	"packetlog/internal/database/sql/model"
	"packetlog/internal/telemetry"
)

var table = model.Table{
	Name: "logs",
	Columns: []model.Column{
		{Name: "seq", Type: model.ColumnText, NotNull: true},
		{Name: "length", Type: model.ColumnInteger},
		{Name: "kv_fields", Type: model.ColumnJSON, NotNull: true},
	},
}

func newSQLiteRepository(t *testing.T) *LogRepository {
	t.Helper()
	d := &dialect.SQLite{}
	db, err := client.Open(d, filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewLogRepository(client.NewSQLClientFromDB(db, d), &telemetry.Trace{})
	if err := repo.EnsureTable(context.Background(), table); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	return repo
}

func record(seq string, length any) model.LogRecord {
	return model.LogRecord{
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Values:    []any{seq, length, "{}"},
	}
}

func TestCreateTableSQL(t *testing.T) {
	pg := NewLogRepository(client.NewSQLClientFromDB(nil, &dialect.Postgres{}), &telemetry.Trace{})
	want := `CREATE TABLE IF NOT EXISTS "logs" ("id" BIGSERIAL PRIMARY KEY, ` +
		`"timestamp" TIMESTAMP WITHOUT TIME ZONE NOT NULL, "seq" VARCHAR NOT NULL, ` +
		`"length" INTEGER, "kv_fields" JSONB NOT NULL)`
	if got := pg.createTableSQL(table); got != want {
		t.Errorf("postgres DDL\n got: %s\nwant: %s", got, want)
	}
	if got := pg.insertSQL(table); got != `INSERT INTO "logs" ("timestamp", "seq", "length", "kv_fields") VALUES ($1, $2, $3, $4)` {
		t.Errorf("postgres insert: %s", got)
	}

	lite := NewLogRepository(client.NewSQLClientFromDB(nil, &dialect.SQLite{}), &telemetry.Trace{})
	if got := lite.createTableSQL(table); !strings.Contains(got, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`) {
		t.Errorf("sqlite DDL: %s", got)
	}
	if got := lite.insertSQL(table); !strings.HasSuffix(got, "VALUES (?, ?, ?, ?)") {
		t.Errorf("sqlite insert: %s", got)
	}
}

func TestEnsureTableIsIdempotent(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	if err := repo.InsertBatch(ctx, table, []model.LogRecord{record("1", int64(60))}); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if err := repo.EnsureTable(ctx, table); err != nil {
		t.Fatalf("second EnsureTable: %v", err)
	}
	if n, err := repo.Count(ctx, table); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v; want 1", n, err)
	}
}

func TestInsertBatch(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	if err := repo.InsertBatch(ctx, table, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	batch := []model.LogRecord{record("1", int64(60)), record("2", nil)}
	if err := repo.InsertBatch(ctx, table, batch); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}

	var ts string
	var ids []int64
	rows, err := repo.db.QueryContext(ctx, `SELECT "id", "timestamp" FROM "logs" ORDER BY "id"`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id, &ts); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 2 || ids[0] >= ids[1] {
		t.Fatalf("ids = %v", ids)
	}
	if ts != "2024-01-02T03:04:05Z" {
		t.Errorf("timestamp = %q", ts)
	}
}

func TestInsertBatchIsAtomic(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	// the NOT NULL violation on the last record aborts the whole batch
	batch := []model.LogRecord{record("1", int64(1)), record("2", int64(2)), {Timestamp: time.Now(), Values: []any{nil, nil, "{}"}}}
	if err := repo.InsertBatch(ctx, table, batch); err == nil {
		t.Fatal("expected error")
	}
	if n, err := repo.Count(ctx, table); err != nil || n != 0 {
		t.Fatalf("Count = %d, %v; want 0", n, err)
	}
}

func TestInsertBatchRejectsMisalignedRecord(t *testing.T) {
	repo := newSQLiteRepository(t)
	bad := model.LogRecord{Timestamp: time.Now(), Values: []any{"1"}}
	err := repo.InsertBatch(context.Background(), table, []model.LogRecord{bad})
	if err == nil || !strings.Contains(err.Error(), "1 values for 3 columns") {
		t.Fatalf("err = %v", err)
	}
}

func TestClosedDatabase(t *testing.T) {
	repo := newSQLiteRepository(t)
	repo.db.Close()
	if err := repo.Ping(context.Background()); err == nil {
		t.Fatal("Ping on closed pool must fail")
	}
	if err := repo.InsertBatch(context.Background(), table, []model.LogRecord{record("1", nil)}); err == nil {
		t.Fatal("InsertBatch on closed pool must fail")
	}
}
