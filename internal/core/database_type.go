package core

// ─── Database Types ────────────────────────────────────────────────────────────

// DatabaseDriver is the value of DATABASE__DRIVER.
type DatabaseDriver string

const (
	DriverPostgres DatabaseDriver = "postgres"
	DriverSQLite   DatabaseDriver = "sqlite"
)

// SchemaName is the value of INGEST__SCHEMA.
type SchemaName string

const (
	SchemaDual SchemaName = "dual"
	SchemaFlat SchemaName = "flat"
)

// ─── Fluentd ───────────────────────────────────────────────────────────────────

type FluentdSubTag string

const (
	FluentdRequest FluentdSubTag = "request_log"
	FluentdIngest  FluentdSubTag = "ingest_log"
)
