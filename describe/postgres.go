package describe

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	tabledesc "github.com/shibukawa/tabledesc"
	"golang.org/x/sync/errgroup"
)

// postgresReader introspects the PostgreSQL catalog. Column metadata comes
// from information_schema joined to pg_catalog for comments; primary key
// membership is a second query issued concurrently. Enum labels depend on
// the UDT names of the first query, so they run after the fan-out, one
// query per distinct enum type.
type postgresReader struct{}

const postgresColumnsQuery = `
SELECT
    c.column_name,
    c.data_type,
    c.udt_name,
    c.character_maximum_length,
    c.numeric_precision,
    c.numeric_scale,
    c.is_nullable,
    c.column_default,
    c.is_identity,
    col_description(pc.oid, c.ordinal_position) AS column_comment
FROM information_schema.columns c
JOIN pg_catalog.pg_namespace pn ON pn.nspname = c.table_schema
JOIN pg_catalog.pg_class pc ON pc.relname = c.table_name AND pc.relnamespace = pn.oid
WHERE c.table_name = $1
  AND c.table_schema = COALESCE(NULLIF($2, ''), current_schema())
ORDER BY c.ordinal_position`

const postgresPrimaryKeyQuery = `
SELECT kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name
 AND kcu.table_schema = tc.table_schema
 AND kcu.table_name = tc.table_name
WHERE tc.constraint_type = 'PRIMARY KEY'
  AND tc.table_name = $1
  AND tc.table_schema = COALESCE(NULLIF($2, ''), current_schema())
ORDER BY kcu.ordinal_position`

const postgresEnumLabelsQuery = `
SELECT e.enumlabel
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_enum e ON e.enumtypid = t.oid
WHERE t.typname = $1
ORDER BY e.enumsortorder`

func (r *postgresReader) ReadColumns(ctx context.Context, q Querier, ident tabledesc.TableIdentifier) ([]rawColumn, error) {
	var (
		columns []rawColumn
		udts    map[string]string
		keys    map[string]bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := q.QueryContext(gctx, postgresColumnsQuery, ident.Table, ident.Schema)
		if err != nil {
			return fmt.Errorf("postgres columns query: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				name, dataType, udtName, isNullable, isIdentity string
				maxLen, precision, scale                        sql.NullInt64
				columnDefault, comment                          sql.NullString
			)

			err := rows.Scan(&name, &dataType, &udtName, &maxLen, &precision, &scale,
				&isNullable, &columnDefault, &isIdentity, &comment)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCatalogScan, err)
			}

			col := rawColumn{
				name:        name,
				dataType:    renderPostgresType(dataType, udtName, maxLen, precision, scale),
				nullable:    isNullable == "YES",
				defaultText: columnDefault,
				comment:     comment.String,
			}

			// Serial columns default to nextval('seq'::regclass); identity
			// columns carry no default at all.
			if isIdentity == "YES" || strings.HasPrefix(columnDefault.String, "nextval(") {
				col.autoIncrement = true
			}

			if dataType == "USER-DEFINED" {
				if udts == nil {
					udts = make(map[string]string)
				}

				udts[name] = udtName
			}

			columns = append(columns, col)
		}

		return rows.Err()
	})

	g.Go(func() error {
		rows, err := q.QueryContext(gctx, postgresPrimaryKeyQuery, ident.Table, ident.Schema)
		if err != nil {
			return fmt.Errorf("postgres key query: %w", err)
		}

		keys, err = collectKeyColumns(rows)

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range columns {
		columns[i].primaryKey = keys[columns[i].name]
	}

	if len(udts) > 0 {
		if err := r.attachEnumLabels(ctx, q, columns, udts); err != nil {
			return nil, err
		}
	}

	return columns, nil
}

// attachEnumLabels resolves the labels of every user defined type found on
// the table. Types with no pg_enum rows are other UDTs (domains, composite
// types) and keep an empty label set.
func (r *postgresReader) attachEnumLabels(ctx context.Context, q Querier, columns []rawColumn, udts map[string]string) error {
	cache := make(map[string][]string, len(udts))

	for i := range columns {
		udt, ok := udts[columns[i].name]
		if !ok {
			continue
		}

		labels, ok := cache[udt]
		if !ok {
			var err error

			labels, err = r.readEnumLabels(ctx, q, udt)
			if err != nil {
				return err
			}

			cache[udt] = labels
		}

		if len(labels) > 0 {
			columns[i].enumValues = labels
		}
	}

	return nil
}

func (r *postgresReader) readEnumLabels(ctx context.Context, q Querier, udt string) ([]string, error) {
	rows, err := q.QueryContext(ctx, postgresEnumLabelsQuery, udt)
	if err != nil {
		return nil, fmt.Errorf("postgres enum query: %w", err)
	}
	defer rows.Close()

	var labels []string

	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogScan, err)
		}

		labels = append(labels, label)
	}

	return labels, rows.Err()
}

// renderPostgresType reassembles the parameterized type text from the
// scanned catalog fields, the way the backend itself would render it
// ("character varying" plus a length of 255 becomes
// "character varying(255)"). User defined types render as their UDT name
// and arrays as the element notation the catalog stores.
func renderPostgresType(dataType, udtName string, maxLen, precision, scale sql.NullInt64) string {
	switch dataType {
	case "USER-DEFINED":
		return udtName
	case "ARRAY":
		return udtName
	case "character varying", "character", "varchar", "char", "bit", "bit varying":
		if maxLen.Valid {
			return fmt.Sprintf("%s(%d)", dataType, maxLen.Int64)
		}
	case "numeric", "decimal":
		if precision.Valid {
			return fmt.Sprintf("%s(%d,%d)", dataType, precision.Int64, scale.Int64)
		}
	}

	return dataType
}
