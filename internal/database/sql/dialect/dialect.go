package dialect

import (
	"fmt"
	"time"

	"packetlog/internal/core"
	"packetlog/internal/database/sql/model"
)

// Dialect abstracts the SQL differences between the supported stores.
type Dialect interface {
	// Name is the DATABASE__DRIVER value this dialect serves.
	Name() core.DatabaseDriver

	// DriverName is the database/sql driver registered for this dialect.
	DriverName() string

	// Placeholder returns the parameter marker for the 1-based index.
	Placeholder(index int) string

	// ColumnType maps a portable column type to DDL.
	ColumnType(t model.ColumnType) string

	// IDColumnDDL is the DDL of the auto-increment primary key.
	IDColumnDDL() string

	// TimestampDDL is the DDL type of the receipt timestamp column.
	TimestampDDL() string

	// TimeValue converts the receipt time into a driver argument.
	TimeValue(t time.Time) any
}

// For returns the dialect of the given driver.
func For(driver core.DatabaseDriver) (Dialect, error) {
	switch driver {
	case core.DriverPostgres:
		return &Postgres{}, nil
	case core.DriverSQLite:
		return &SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}

// QuoteIdent double-quotes an identifier; both dialects accept ANSI quoting.
func QuoteIdent(name string) string {
	return `"` + name + `"`
}
