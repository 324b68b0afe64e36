package ingest

import (
	"fmt"

	"packetlog/config"
	"packetlog/internal/core"
	"packetlog/internal/database/sql/model"
)

// Kind is how an input value is coerced into its column.
type Kind int

const (
	// KindString keeps strings and takes the literal text of numbers and booleans.
	KindString Kind = iota
	// KindInteger takes a JSON integer or a base-10 integer string.
	KindInteger
	// KindObject takes a JSON object and stores its JSON text; absent is {}.
	KindObject
	// KindText stringifies anything; absent is "".
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindObject:
		return "json object"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

func (k Kind) columnType() model.ColumnType {
	switch k {
	case KindInteger:
		return model.ColumnInteger
	case KindObject:
		return model.ColumnJSON
	default:
		return model.ColumnText
	}
}

// Field maps one top-level input key onto a column.
type Field struct {
	Key      string
	Column   string
	Kind     Kind
	Required bool
	// NonEmpty also treats empty and zero values as missing: "", [], {}, false, 0.
	NonEmpty bool
}

// Derived maps a key nested inside an object field onto its own column.
type Derived struct {
	Parent string
	Key    string
	Column string
}

// Schema is the explicit mapping of one log format onto its table.
type Schema struct {
	Name    core.SchemaName
	Fields  []Field
	Derived []Derived
	table   model.Table
}

func newSchema(name core.SchemaName, table string, fields []Field, derived []Derived) *Schema {
	cols := make([]model.Column, 0, len(fields)+len(derived))
	for _, f := range fields {
		cols = append(cols, model.Column{
			Name:    f.Column,
			Type:    f.Kind.columnType(),
			NotNull: f.Required || f.Kind == KindObject || f.Kind == KindText,
		})
	}
	for _, d := range derived {
		cols = append(cols, model.Column{Name: d.Column, Type: model.ColumnText})
	}
	return &Schema{
		Name:    name,
		Fields:  fields,
		Derived: derived,
		table:   model.Table{Name: table, Columns: cols},
	}
}

// Table is the table layout of the schema: one column per field, then one per
// derived key.
func (s *Schema) Table() model.Table {
	return s.table
}

func stringFields(kind Kind, keys ...string) []Field {
	fields := make([]Field, len(keys))
	for i, k := range keys {
		fields[i] = Field{Key: k, Column: k, Kind: kind}
	}
	return fields
}

// DualSchema carries both directions of a packet plus a kv_fields bag. Only
// seq is required.
func DualSchema(table string) *Schema {
	fields := []Field{{Key: "count", Column: "count", Kind: KindString}}
	fields = append(fields, Field{Key: "seq", Column: "seq", Kind: KindString, Required: true, NonEmpty: true})
	fields = append(fields, stringFields(KindString,
		"in_mac", "out_mac", "in_mac2", "out_mac2",
		"dir1", "dir2", "len1", "len2", "proto1", "proto2",
		"src1", "dst1", "src2", "dst2",
		"log_stage",
	)...)
	fields = append(fields, Field{Key: "kv_fields", Column: "kv_fields", Kind: KindObject})

	derived := []Derived{
		{Parent: "kv_fields", Key: "POLNO", Column: "policy"},
		{Parent: "kv_fields", Key: "ID", Column: "session_id"},
		{Parent: "kv_fields", Key: "S", Column: "description"},
		{Parent: "kv_fields", Key: "CacheFind", Column: "log_type"},
	}
	return newSchema(core.SchemaDual, table, fields, derived)
}

// FlatSchema is a single packet direction. Every field except description
// is required.
func FlatSchema(table string) *Schema {
	return newSchema(core.SchemaFlat, table, []Field{
		{Key: "in_mac", Column: "in_mac", Kind: KindString, Required: true},
		{Key: "out_mac", Column: "out_mac", Kind: KindString, Required: true},
		{Key: "dir", Column: "direction", Kind: KindString, Required: true},
		{Key: "len", Column: "length", Kind: KindInteger, Required: true},
		{Key: "proto", Column: "protocol", Kind: KindInteger, Required: true},
		{Key: "src_ip", Column: "src_ip", Kind: KindString, Required: true},
		{Key: "dst_ip", Column: "dst_ip", Kind: KindString, Required: true},
		{Key: "src_port", Column: "src_port", Kind: KindInteger, Required: true},
		{Key: "dst_port", Column: "dst_port", Kind: KindInteger, Required: true},
		{Key: "description", Column: "description", Kind: KindText},
	}, nil)
}

// SchemaFor returns the schema by name.
func SchemaFor(name core.SchemaName, table string) (*Schema, error) {
	switch name {
	case core.SchemaDual:
		return DualSchema(table), nil
	case core.SchemaFlat:
		return FlatSchema(table), nil
	default:
		return nil, fmt.Errorf("unknown schema %q", name)
	}
}

// NewSchema returns the schema selected by INGEST__SCHEMA.
func NewSchema(conf *config.Configuration) (*Schema, error) {
	return SchemaFor(core.SchemaName(conf.Ingest.Schema), conf.Ingest.Table)
}
