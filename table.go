package tabledesc

import "strings"

// TableIdentifier names a table, optionally qualified by a schema.
// Both parts are case sensitive: resolution fails rather than silently
// matching a table whose name differs only in case.
type TableIdentifier struct {
	Table  string `json:"table" yaml:"table"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// ParseTableIdentifier splits a possibly dotted name ("schema.table") into
// a TableIdentifier. A bare name leaves Schema empty so the connection's
// default schema applies.
func ParseTableIdentifier(name string) TableIdentifier {
	if schema, table, ok := strings.Cut(name, "."); ok {
		return TableIdentifier{Table: table, Schema: schema}
	}

	return TableIdentifier{Table: name}
}

// String renders the identifier as "schema.table", or just the table name
// when no schema is set.
func (i TableIdentifier) String() string {
	if i.Schema != "" {
		return i.Schema + "." + i.Table
	}

	return i.Table
}

// ColumnDescription is the dialect independent description of one column.
// Type keeps the backend's native rendering ("VARCHAR(255)", "NUMERIC(10,2)")
// rather than a portable type enum.
type ColumnDescription struct {
	Name          string               `json:"name" yaml:"name"`
	Type          string               `json:"type" yaml:"type"`
	AllowNull     bool                 `json:"allowNull" yaml:"allow_null"`
	Default       DefaultValue         `json:"defaultValue" yaml:"default_value"`
	PrimaryKey    bool                 `json:"primaryKey" yaml:"primary_key"`
	AutoIncrement bool                 `json:"autoIncrement" yaml:"auto_increment"`
	Comment       string               `json:"comment,omitempty" yaml:"comment,omitempty"`
	EnumValues    []string             `json:"special,omitempty" yaml:"enum_values,omitempty"`
	Unique        bool                 `json:"unique,omitempty" yaml:"unique,omitempty"`
	References    *ForeignKeyReference `json:"references,omitempty" yaml:"references,omitempty"`
}

// ForeignKeyReference points a column at the table and key column it
// references.
type ForeignKeyReference struct {
	Table string `json:"table" yaml:"table"`
	Key   string `json:"key" yaml:"key"`
}

// ConstraintEntry records a unique or foreign key declaration for dialects
// whose ALTER TABLE cannot express such constraints. Entries live in a
// shadow store outside the catalog and are overlaid onto descriptions at
// introspection time.
type ConstraintEntry struct {
	Table      string               `json:"table" yaml:"table"`
	Column     string               `json:"column" yaml:"column"`
	Unique     bool                 `json:"unique,omitempty" yaml:"unique,omitempty"`
	References *ForeignKeyReference `json:"references,omitempty" yaml:"references,omitempty"`
}

// TableDescription holds the full description of one table. Columns keeps
// catalog order; the order carries no semantic meaning but round-trips the
// backend's own presentation.
type TableDescription struct {
	Table   string               `json:"table" yaml:"table"`
	Schema  string               `json:"schema,omitempty" yaml:"schema,omitempty"`
	Dialect Dialect              `json:"dialect" yaml:"dialect"`
	Columns []*ColumnDescription `json:"columns" yaml:"columns"`
}

// Column returns the description of the named column, or nil when the
// table has no column of that exact name.
func (t *TableDescription) Column(name string) *ColumnDescription {
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}

	return nil
}

// ColumnMap returns a name keyed view of the columns. Every catalog column
// appears exactly once.
func (t *TableDescription) ColumnMap() map[string]*ColumnDescription {
	m := make(map[string]*ColumnDescription, len(t.Columns))
	for _, col := range t.Columns {
		m[col.Name] = col
	}

	return m
}

// ColumnNames returns the column names in catalog order.
func (t *TableDescription) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}

	return names
}

// PrimaryKey returns the names of the primary key member columns in
// catalog order. Composite keys return every member.
func (t *TableDescription) PrimaryKey() []string {
	var keys []string

	for _, col := range t.Columns {
		if col.PrimaryKey {
			keys = append(keys, col.Name)
		}
	}

	return keys
}
