package handler

import (
	"packetlog/internal/ingest"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// FieldsHandler prints the active mapping table.
type FieldsHandler struct {
	schema *ingest.Schema
}

func NewFieldsHandler(schema *ingest.Schema) *FieldsHandler {
	return &FieldsHandler{schema: schema}
}

func (handler *FieldsHandler) Print(cmd *cobra.Command, args []string) {
	cmd.Printf("schema %s, table %q\n", handler.schema.Name, handler.schema.Table().Name)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Input Key", "Column", "Kind", "Required", "When Absent"})
	for _, f := range handler.schema.Fields {
		t.AppendRow(table.Row{f.Key, f.Column, f.Kind, required(f), absent(f)})
	}
	for _, d := range handler.schema.Derived {
		t.AppendRow(table.Row{d.Parent + "." + d.Key, d.Column, ingest.KindString, "no", "NULL"})
	}
	t.AppendFooter(table.Row{"", "id, timestamp", "", "", "server assigned"})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func required(f ingest.Field) string {
	switch {
	case f.Required && f.NonEmpty:
		return "yes, non-empty"
	case f.Required:
		return "yes"
	default:
		return "no"
	}
}

func absent(f ingest.Field) string {
	switch {
	case f.Required:
		return "skip entry"
	case f.Kind == ingest.KindObject:
		return "{}"
	case f.Kind == ingest.KindText:
		return `""`
	default:
		return "NULL"
	}
}
