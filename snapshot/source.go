// Package snapshot answers table descriptions from a tbls schema.json
// artefact instead of a live connection. The artefact's driver block picks
// the dialect, and default clauses run through the same normalization as
// the live readers, so a snapshot description matches what the database
// the artefact was taken from would report. Views describe like tables;
// the artefact records their columns the same way.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tblsschema "github.com/k1LoW/tbls/schema"

	tabledesc "github.com/shibukawa/tabledesc"
	"github.com/shibukawa/tabledesc/describe"
)

// Source resolves table identifiers against a decoded schema artefact.
// Lookups are case sensitive, exactly like the live catalog readers.
type Source struct {
	dialect       tabledesc.Dialect
	defaultSchema string
	order         []tabledesc.TableIdentifier
	tables        map[tabledesc.TableIdentifier]*tblsschema.Table
	enums         map[string][]string
}

// Load reads a tbls schema.json artefact from path.
func Load(path string) (*Source, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("snapshot: open schema JSON %q: %w", path, err)
	}
	defer file.Close()

	src, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("snapshot: decode schema JSON %q: %w", path, err)
	}

	return src, nil
}

// Decode builds a Source from schema JSON.
func Decode(r io.Reader) (*Source, error) {
	dec := json.NewDecoder(r)

	var schema tblsschema.Schema
	if err := dec.Decode(&schema); err != nil {
		return nil, err
	}

	return FromSchema(&schema)
}

// FromSchema builds a Source from an already decoded tbls schema.
func FromSchema(schema *tblsschema.Schema) (*Source, error) {
	if err := validateSchema(schema); err != nil {
		return nil, err
	}

	dialect, err := tabledesc.ParseDialect(schema.Driver.Name)
	if err != nil {
		return nil, err
	}

	src := &Source{
		dialect: dialect,
		tables:  make(map[tabledesc.TableIdentifier]*tblsschema.Table, len(schema.Tables)),
		enums:   make(map[string][]string),
	}

	if schema.Driver.Meta != nil {
		src.defaultSchema = schema.Driver.Meta.CurrentSchema
	}

	if src.defaultSchema == "" {
		src.defaultSchema = dialect.DefaultSchema()
	}

	for _, enum := range schema.Enums {
		if enum == nil {
			continue
		}

		labels := append([]string(nil), enum.Values...)
		src.enums[enum.Name] = labels

		// The artefact may qualify the enum name while columns carry the
		// bare type name.
		if idx := strings.LastIndex(enum.Name, "."); idx >= 0 {
			src.enums[enum.Name[idx+1:]] = labels
		}
	}

	for _, tbl := range schema.Tables {
		if tbl == nil {
			continue
		}

		ident := splitTableName(tbl.Name, schema.Driver)
		if _, ok := src.tables[ident]; ok {
			continue
		}

		src.tables[ident] = tbl
		src.order = append(src.order, ident)
	}

	return src, nil
}

func validateSchema(s *tblsschema.Schema) error {
	if s == nil {
		return ErrSchemaPayloadNil
	}

	if s.Driver == nil {
		return ErrDriverMetadataMissing
	}

	if strings.TrimSpace(s.Driver.Name) == "" {
		return ErrDriverNameEmpty
	}

	if len(s.Tables) == 0 {
		return ErrNoTables
	}

	return nil
}

// Dialect returns the dialect recorded in the artefact's driver block.
func (s *Source) Dialect() tabledesc.Dialect {
	return s.dialect
}

// Tables lists every table identifier in the artefact, in artefact order.
func (s *Source) Tables() []tabledesc.TableIdentifier {
	return append([]tabledesc.TableIdentifier(nil), s.order...)
}

// DescribeTable describes a table by name. The name may carry a schema
// prefix ("archive.users"); an explicit schema argument takes precedence
// over the prefix.
func (s *Source) DescribeTable(ctx context.Context, table string, schema ...string) (*tabledesc.TableDescription, error) {
	ident := tabledesc.ParseTableIdentifier(table)
	if len(schema) > 0 && schema[0] != "" {
		ident.Schema = schema[0]
	}

	return s.Describe(ctx, ident)
}

// Describe resolves ident against the artefact. Unknown tables yield the
// same *TableNotFoundError a live describer returns.
func (s *Source) Describe(ctx context.Context, ident tabledesc.TableIdentifier) (*tabledesc.TableDescription, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ident.Table == "" {
		return nil, tabledesc.ErrInvalidIdentifier
	}

	if ident.Schema == "" {
		ident.Schema = s.defaultSchema
	}

	tbl, ok := s.tables[ident]
	if !ok && ident.Schema == s.defaultSchema {
		// Artefacts without driver metadata store their tables unqualified.
		tbl, ok = s.tables[tabledesc.TableIdentifier{Table: ident.Table}]
	}

	if !ok {
		return nil, &tabledesc.TableNotFoundError{Table: ident.Table, Schema: ident.Schema}
	}

	return s.convert(ident, tbl), nil
}

func (s *Source) convert(ident tabledesc.TableIdentifier, tbl *tblsschema.Table) *tabledesc.TableDescription {
	desc := &tabledesc.TableDescription{
		Table:   ident.Table,
		Schema:  ident.Schema,
		Dialect: s.dialect,
		Columns: make([]*tabledesc.ColumnDescription, 0, len(tbl.Columns)),
	}

	keyColumns := primaryKeyColumns(tbl)

	for _, col := range tbl.Columns {
		if col == nil {
			continue
		}

		enumValues := s.enumValuesFor(col.Type)
		extra := strings.ToUpper(col.ExtraDef)

		out := &tabledesc.ColumnDescription{
			Name:       col.Name,
			Type:       col.Type,
			AllowNull:  col.Nullable,
			PrimaryKey: col.PK || keyColumns[col.Name],
			Comment:    col.Comment,
			EnumValues: enumValues,
		}

		out.Default = describe.NormalizeDefault(s.dialect, describe.RawDefault{
			DeclaredType: col.Type,
			Text:         col.Default,
			Nullable:     col.Nullable,
			Expression:   strings.Contains(extra, "DEFAULT_GENERATED"),
			EnumValues:   enumValues,
		})

		out.AutoIncrement = strings.Contains(extra, "AUTO_INCREMENT") ||
			strings.Contains(extra, "IDENTITY") ||
			(col.Default.Valid && strings.HasPrefix(col.Default.String, "nextval("))

		applyColumnConstraints(out, tbl)

		desc.Columns = append(desc.Columns, out)
	}

	return desc
}

// enumValuesFor resolves the member labels for an enum column. MySQL
// artefacts inline the labels in the column type; Postgres artefacts list
// them in the schema level enums block keyed by type name.
func (s *Source) enumValuesFor(columnType string) []string {
	if vals := describe.EnumValuesFromColumnType(columnType); len(vals) > 0 {
		return vals
	}

	if vals, ok := s.enums[columnType]; ok {
		return append([]string(nil), vals...)
	}

	return nil
}

func primaryKeyColumns(tbl *tblsschema.Table) map[string]bool {
	keys := make(map[string]bool)

	for _, c := range tbl.Constraints {
		if c == nil || !strings.EqualFold(c.Type, "PRIMARY KEY") {
			continue
		}

		for _, name := range c.Columns {
			keys[name] = true
		}
	}

	return keys
}

// applyColumnConstraints overlays single column unique and foreign key
// declarations, the same shape the live shadow store reports.
func applyColumnConstraints(col *tabledesc.ColumnDescription, tbl *tblsschema.Table) {
	for _, c := range tbl.Constraints {
		if c == nil || len(c.Columns) != 1 || c.Columns[0] != col.Name {
			continue
		}

		switch strings.ToUpper(c.Type) {
		case "UNIQUE":
			col.Unique = true
		case "FOREIGN KEY":
			if c.ReferencedTable == nil || len(c.ReferencedColumns) != 1 {
				continue
			}

			col.References = &tabledesc.ForeignKeyReference{
				Table: *c.ReferencedTable,
				Key:   c.ReferencedColumns[0],
			}
		}
	}
}

// splitTableName resolves a possibly qualified artefact table name. Bare
// names inherit the artefact's current schema so lookups match how the
// originating connection would have resolved them.
func splitTableName(fullName string, driver *tblsschema.Driver) tabledesc.TableIdentifier {
	ident := tabledesc.ParseTableIdentifier(fullName)
	if ident.Schema == "" && driver != nil && driver.Meta != nil {
		ident.Schema = driver.Meta.CurrentSchema
	}

	return ident
}
