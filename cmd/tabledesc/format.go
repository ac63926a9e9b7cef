package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"

	tabledesc "github.com/shibukawa/tabledesc"
)

func isValidFormat(format string) bool {
	switch format {
	case "table", "json", "yaml":
		return true
	default:
		return false
	}
}

func renderDescription(w io.Writer, desc *tabledesc.TableDescription, format string) error {
	switch format {
	case "table":
		return renderDescriptionTable(w, desc)
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(desc)
	case "yaml":
		data, err := yaml.Marshal(desc)
		if err != nil {
			return fmt.Errorf("failed to marshal description to YAML: %w", err)
		}

		_, err = w.Write(data)

		return err
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOutputFormat, format)
	}
}

func renderDescriptionTable(w io.Writer, desc *tabledesc.TableDescription) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"COLUMN", "TYPE", "NULL", "DEFAULT", "KEY", "EXTRA", "COMMENT"})

	for _, col := range desc.Columns {
		t.AppendRow(table.Row{
			col.Name,
			col.Type,
			yesNo(col.AllowNull),
			defaultCell(col.Default),
			keyCell(col),
			extraCell(col),
			col.Comment,
		})
	}

	t.Render()
	fmt.Fprintf(w, "%s: %d columns\n", qualifiedName(desc), len(desc.Columns))

	return nil
}

func qualifiedName(desc *tabledesc.TableDescription) string {
	if desc.Schema != "" {
		return desc.Schema + "." + desc.Table
	}

	return desc.Table
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}

	return "NO"
}

// defaultCell keeps the four default states apart in plain text: absent
// stays blank, the NULL keyword reads NULL, literals show their decoded
// value, expressions show the verbatim clause.
func defaultCell(d tabledesc.DefaultValue) string {
	switch {
	case d.IsNull():
		return "NULL"
	case d.IsLiteral():
		return fmt.Sprintf("%v", d.Value)
	case d.IsExpression():
		return d.Raw
	default:
		return ""
	}
}

func keyCell(col *tabledesc.ColumnDescription) string {
	switch {
	case col.PrimaryKey:
		return "PRI"
	case col.Unique:
		return "UNI"
	case col.References != nil:
		return "FK"
	default:
		return ""
	}
}

func extraCell(col *tabledesc.ColumnDescription) string {
	var parts []string

	if col.AutoIncrement {
		parts = append(parts, "auto_increment")
	}

	if len(col.EnumValues) > 0 {
		parts = append(parts, "enum("+strings.Join(col.EnumValues, ",")+")")
	}

	if col.References != nil {
		parts = append(parts, fmt.Sprintf("references %s(%s)", col.References.Table, col.References.Key))
	}

	return strings.Join(parts, " ")
}
