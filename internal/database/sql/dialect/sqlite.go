package dialect

import (
	"time"

	"packetlog/internal/core"
	"packetlog/internal/database/sql/model"

	_ "modernc.org/sqlite"
)

// SQLite is the embedded store used for local runs and tests.
type SQLite struct{}

func (d *SQLite) Name() core.DatabaseDriver    { return core.DriverSQLite }
func (d *SQLite) DriverName() string           { return "sqlite" }
func (d *SQLite) Placeholder(index int) string { return "?" }
func (d *SQLite) IDColumnDDL() string          { return `"id" INTEGER PRIMARY KEY AUTOINCREMENT` }
func (d *SQLite) TimestampDDL() string         { return "TEXT" }

func (d *SQLite) ColumnType(t model.ColumnType) string {
	switch t {
	case model.ColumnInteger:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// TimeValue stores RFC 3339 text so rows sort and parse without driver help.
func (d *SQLite) TimeValue(t time.Time) any {
	return t.UTC().Format(time.RFC3339Nano)
}
