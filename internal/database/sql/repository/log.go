package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"packetlog/internal/core"
	"packetlog/internal/database/client"
	"packetlog/internal/database/sql/dialect"
	"packetlog/internal/database/sql/model"
	"packetlog/internal/telemetry"
)

// LogRepository writes packet log rows.
type LogRepository struct {
	db      *sql.DB
	dialect dialect.Dialect
	trace   *telemetry.Trace
}

func NewLogRepository(sqlClient *client.SQLClient, trace *telemetry.Trace) *LogRepository {
	return &LogRepository{db: sqlClient.DB(), dialect: sqlClient.Dialect(), trace: trace}
}

// EnsureTable creates the table if it does not exist yet. Existing tables are
// left untouched.
func (repository *LogRepository) EnsureTable(ctx context.Context, table model.Table) error {
	_, err := repository.db.ExecContext(ctx, repository.createTableSQL(table))
	if err != nil {
		return fmt.Errorf("create table %s: %w", table.Name, err)
	}
	return nil
}

// InsertBatch writes all records in one transaction. Either every record is
// committed or none is.
func (repository *LogRepository) InsertBatch(ctx context.Context, table model.Table, records []model.LogRecord) (err error) {
	ctx, span, end := repository.trace.WithSpan(ctx)
	defer func() { end(err) }()
	repository.trace.ApplyTraceAttributes(span, core.TraceBatchWriteMeta{
		Driver: string(repository.dialect.Name()),
		Table:  table.Name,
		Rows:   len(records),
	})
	if len(records) == 0 {
		return nil
	}

	tx, err := repository.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	// no-op once committed
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, repository.insertSQL(table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(table.Columns)+1)
	for i, record := range records {
		if len(record.Values) != len(table.Columns) {
			return fmt.Errorf("record %d: %d values for %d columns", i, len(record.Values), len(table.Columns))
		}
		args[0] = repository.dialect.TimeValue(record.Timestamp)
		copy(args[1:], record.Values)
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Count returns the number of rows in the table.
func (repository *LogRepository) Count(ctx context.Context, table model.Table) (int64, error) {
	var n int64
	query := "SELECT COUNT(*) FROM " + dialect.QuoteIdent(table.Name)
	if err := repository.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (repository *LogRepository) Ping(ctx context.Context) error {
	return repository.db.PingContext(ctx)
}

func (repository *LogRepository) createTableSQL(table model.Table) string {
	defs := make([]string, 0, len(table.Columns)+2)
	defs = append(defs,
		repository.dialect.IDColumnDDL(),
		dialect.QuoteIdent("timestamp")+" "+repository.dialect.TimestampDDL()+" NOT NULL",
	)
	for _, c := range table.Columns {
		def := dialect.QuoteIdent(c.Name) + " " + repository.dialect.ColumnType(c.Type)
		if c.NotNull {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		dialect.QuoteIdent(table.Name), strings.Join(defs, ", "))
}

func (repository *LogRepository) insertSQL(table model.Table) string {
	cols := make([]string, 0, len(table.Columns)+1)
	marks := make([]string, 0, len(table.Columns)+1)
	cols = append(cols, dialect.QuoteIdent("timestamp"))
	marks = append(marks, repository.dialect.Placeholder(1))
	for i, c := range table.Columns {
		cols = append(cols, dialect.QuoteIdent(c.Name))
		marks = append(marks, repository.dialect.Placeholder(i+2))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		dialect.QuoteIdent(table.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))
}
