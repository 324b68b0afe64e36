package dialect

import (
	"strconv"
	"time"

	"packetlog/internal/core"
	"packetlog/internal/database/sql/model"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres talks to PostgreSQL through the pgx database/sql driver.
type Postgres struct{}

func (d *Postgres) Name() core.DatabaseDriver    { return core.DriverPostgres }
func (d *Postgres) DriverName() string           { return "pgx" }
func (d *Postgres) Placeholder(index int) string { return "$" + strconv.Itoa(index) }
func (d *Postgres) IDColumnDDL() string          { return `"id" BIGSERIAL PRIMARY KEY` }
func (d *Postgres) TimestampDDL() string         { return "TIMESTAMP WITHOUT TIME ZONE" }

func (d *Postgres) ColumnType(t model.ColumnType) string {
	switch t {
	case model.ColumnInteger:
		return "INTEGER"
	case model.ColumnJSON:
		return "JSONB"
	default:
		return "VARCHAR"
	}
}

// TimeValue stores UTC wall time in a column without zone.
func (d *Postgres) TimeValue(t time.Time) any {
	return t.UTC()
}
