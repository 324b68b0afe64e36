package model

import "time"

// ColumnType is the portable type of a log table column; dialects map it to DDL.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnJSON
)

func (t ColumnType) String() string {
	switch t {
	case ColumnText:
		return "text"
	case ColumnInteger:
		return "integer"
	case ColumnJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Column is one data column of a log table. The id and timestamp columns are
// implicit and always present.
type Column struct {
	Name    string
	Type    ColumnType
	NotNull bool
}

// Table describes the log table of the active schema.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the data column names in table order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// LogRecord is one staged row. Values is aligned with Table.Columns; a nil
// element is written as NULL.
type LogRecord struct {
	Timestamp time.Time
	Values    []any
}
