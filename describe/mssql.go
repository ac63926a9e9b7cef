package describe

import (
	"context"
	"database/sql"
	"fmt"

	tabledesc "github.com/shibukawa/tabledesc"
	"golang.org/x/sync/errgroup"
)

// mssqlReader introspects SQL Server through the sys catalog views. Column
// metadata and primary key membership are independent queries issued
// concurrently. Defaults come from sys.default_constraints wrapped in the
// parentheses the backend adds; comments are MS_Description extended
// properties.
type mssqlReader struct{}

const mssqlColumnsQuery = `
SELECT
    c.name,
    t.name AS type_name,
    c.max_length,
    c.precision,
    c.scale,
    c.is_nullable,
    c.is_identity,
    dc.definition,
    CAST(ep.value AS NVARCHAR(4000)) AS column_comment
FROM sys.columns c
JOIN sys.objects o ON o.object_id = c.object_id
JOIN sys.schemas s ON s.schema_id = o.schema_id
JOIN sys.types t ON t.user_type_id = c.user_type_id
LEFT JOIN sys.default_constraints dc ON dc.object_id = c.default_object_id
LEFT JOIN sys.extended_properties ep
    ON ep.class = 1 AND ep.major_id = c.object_id AND ep.minor_id = c.column_id
   AND ep.name = 'MS_Description'
WHERE o.name = @p1
  AND s.name = COALESCE(NULLIF(@p2, ''), SCHEMA_NAME())
ORDER BY c.column_id`

const mssqlPrimaryKeyQuery = `
SELECT c.name
FROM sys.indexes i
JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
JOIN sys.objects o ON o.object_id = i.object_id
JOIN sys.schemas s ON s.schema_id = o.schema_id
WHERE i.is_primary_key = 1
  AND o.name = @p1
  AND s.name = COALESCE(NULLIF(@p2, ''), SCHEMA_NAME())
ORDER BY ic.key_ordinal`

func (r *mssqlReader) ReadColumns(ctx context.Context, q Querier, ident tabledesc.TableIdentifier) ([]rawColumn, error) {
	var (
		columns []rawColumn
		keys    map[string]bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := q.QueryContext(gctx, mssqlColumnsQuery, ident.Table, ident.Schema)
		if err != nil {
			return fmt.Errorf("mssql columns query: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				name, typeName         string
				maxLength              int64
				precision, scale       int64
				isNullable, isIdentity bool
				definition, comment    sql.NullString
			)

			err := rows.Scan(&name, &typeName, &maxLength, &precision, &scale,
				&isNullable, &isIdentity, &definition, &comment)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCatalogScan, err)
			}

			columns = append(columns, rawColumn{
				name:          name,
				dataType:      renderMSSQLType(typeName, maxLength, precision, scale),
				nullable:      isNullable,
				defaultText:   definition,
				autoIncrement: isIdentity,
				comment:       comment.String,
			})
		}

		return rows.Err()
	})

	g.Go(func() error {
		rows, err := q.QueryContext(gctx, mssqlPrimaryKeyQuery, ident.Table, ident.Schema)
		if err != nil {
			return fmt.Errorf("mssql key query: %w", err)
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

	return columns, nil
}

// renderMSSQLType reassembles the parameterized type text. sys.columns
// stores max_length in bytes, so national character types halve it to get
// the declared character count, and -1 renders as max.
func renderMSSQLType(typeName string, maxLength, precision, scale int64) string {
	switch typeName {
	case "varchar", "char", "varbinary", "binary":
		if maxLength == -1 {
			return typeName + "(max)"
		}

		return fmt.Sprintf("%s(%d)", typeName, maxLength)
	case "nvarchar", "nchar":
		if maxLength == -1 {
			return typeName + "(max)"
		}

		return fmt.Sprintf("%s(%d)", typeName, maxLength/2)
	case "decimal", "numeric":
		return fmt.Sprintf("%s(%d,%d)", typeName, precision, scale)
	case "datetime2", "datetimeoffset", "time":
		return fmt.Sprintf("%s(%d)", typeName, scale)
	default:
		return typeName
	}
}
