package cli

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/koustreak/schemaroute/internal/errs"
	"go.yaml.in/yaml/v3"
)

// Format selects how command results are printed.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Renderer prints command results in the selected Format.
type Renderer struct {
	w      io.Writer
	format Format
}

// NewRenderer returns a Renderer writing to w. An empty format means table.
func NewRenderer(w io.Writer, format Format) (*Renderer, error) {
	switch format {
	case "":
		format = FormatTable
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown output format %q", format)
	}
	return &Renderer{w: w, format: format}, nil
}

// Render writes v as JSON or YAML, or as a table built from header and rows.
func (r *Renderer) Render(v any, header table.Row, rows []table.Row) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
	return nil
}
