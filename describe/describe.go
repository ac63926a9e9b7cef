// Package describe resolves live database tables into normalized column
// descriptions. One Describer wraps one connection and one dialect; its
// Describe methods issue the dialect's catalog queries, normalize default
// clauses into a dual raw/parsed form, and merge in shadow constraint
// state for dialects that need it.
package describe

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	tabledesc "github.com/shibukawa/tabledesc"
)

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
	_ Querier = (*sql.Conn)(nil)
)

// Describer is the introspection facade for one dialect over one query
// capability.
type Describer struct {
	db            Querier
	dialect       tabledesc.Dialect
	reader        catalogReader
	shadow        *ShadowStore
	logger        *slog.Logger
	defaultSchema string
}

// Option configures a Describer.
type Option func(*Describer)

// WithLogger routes engine logging. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Describer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithShadowStore injects the constraint shadow store shared with the DDL
// side of the application. The store's lifetime should track the
// connection's.
func WithShadowStore(store *ShadowStore) Option {
	return func(d *Describer) {
		d.shadow = store
	}
}

// WithDefaultSchema resolves unqualified identifiers against schema
// instead of letting the backend pick its session default.
func WithDefaultSchema(schema string) Option {
	return func(d *Describer) {
		d.defaultSchema = schema
	}
}

// New builds a Describer for dialect over db. Dialects with restricted
// ALTER TABLE get a fresh shadow store unless one is injected.
func New(db Querier, dialect tabledesc.Dialect, opts ...Option) (*Describer, error) {
	if db == nil {
		return nil, tabledesc.ErrNilQuerier
	}

	reader, err := newCatalogReader(dialect)
	if err != nil {
		return nil, err
	}

	d := &Describer{
		db:      db,
		dialect: dialect,
		reader:  reader,
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.shadow == nil && dialect.NeedsConstraintShadow() {
		d.shadow = NewShadowStore()
	}

	return d, nil
}

// Dialect returns the dialect this Describer introspects.
func (d *Describer) Dialect() tabledesc.Dialect {
	return d.dialect
}

// DescribeTable describes a table by name. The name may carry a schema
// prefix ("archive.users"); an explicit schema argument takes precedence
// over the prefix.
func (d *Describer) DescribeTable(ctx context.Context, table string, schema ...string) (*tabledesc.TableDescription, error) {
	ident := tabledesc.ParseTableIdentifier(table)
	if len(schema) > 0 && schema[0] != "" {
		ident.Schema = schema[0]
	}

	return d.Describe(ctx, ident)
}

// Describe resolves ident against the live catalog and returns the merged
// description. Tables the catalog knows nothing about yield a
// *TableNotFoundError carrying the looked-up names; never an empty
// description.
func (d *Describer) Describe(ctx context.Context, ident tabledesc.TableIdentifier) (*tabledesc.TableDescription, error) {
	if ident.Table == "" {
		return nil, tabledesc.ErrInvalidIdentifier
	}

	if ident.Schema == "" {
		ident.Schema = d.defaultSchema
	}

	d.logger.DebugContext(ctx, "describing table",
		"dialect", string(d.dialect), "table", ident.Table, "schema", ident.Schema)

	rows, err := d.reader.ReadColumns(ctx, d.db, ident)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", ident, err)
	}

	if len(rows) == 0 {
		return nil, &tabledesc.TableNotFoundError{Table: ident.Table, Schema: ident.Schema}
	}

	var shadow []tabledesc.ConstraintEntry
	if d.shadow != nil && d.dialect.NeedsConstraintShadow() {
		shadow = d.shadow.List(ident.Table)
	}

	desc := buildDescription(d.dialect, ident, rows, shadow)

	d.logger.DebugContext(ctx, "described table",
		"table", ident.Table, "columns", len(desc.Columns))

	return desc, nil
}

// RecordConstraint registers a unique or foreign key declaration with the
// shadow store so later Describe calls report it. Dialects without a
// shadow store reject the call.
func (d *Describer) RecordConstraint(entry tabledesc.ConstraintEntry) error {
	if d.shadow == nil {
		return tabledesc.ErrNoShadowStore
	}

	d.shadow.Record(entry)

	return nil
}

// Constraints lists the shadow entries recorded for table.
func (d *Describer) Constraints(table string) ([]tabledesc.ConstraintEntry, error) {
	if d.shadow == nil {
		return nil, tabledesc.ErrNoShadowStore
	}

	return d.shadow.List(table), nil
}

// RemoveConstraints drops all shadow entries for table, mirroring a table
// drop.
func (d *Describer) RemoveConstraints(table string) error {
	if d.shadow == nil {
		return tabledesc.ErrNoShadowStore
	}

	d.shadow.Remove(table)

	return nil
}

// RemoveColumnConstraint drops the shadow entry owned by one column,
// mirroring a column drop.
func (d *Describer) RemoveColumnConstraint(table, column string) error {
	if d.shadow == nil {
		return tabledesc.ErrNoShadowStore
	}

	d.shadow.RemoveColumn(table, column)

	return nil
}
