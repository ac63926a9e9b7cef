package describe

import (
	"context"
	"database/sql"
	"fmt"

	tabledesc "github.com/shibukawa/tabledesc"
	"golang.org/x/sync/errgroup"
)

// db2Reader introspects Db2 through the SYSCAT views. Column metadata and
// primary key membership run concurrently. DEFAULT is a reserved word in
// Db2 SQL and needs quoting even as a select list item.
type db2Reader struct{}

const db2ColumnsQuery = `
SELECT
    COLNAME,
    TYPENAME,
    LENGTH,
    SCALE,
    NULLS,
    "DEFAULT",
    IDENTITY,
    REMARKS
FROM SYSCAT.COLUMNS
WHERE TABNAME = ?
  AND TABSCHEMA = COALESCE(NULLIF(?, ''), CURRENT SCHEMA)
ORDER BY COLNO`

const db2PrimaryKeyQuery = `
SELECT kc.COLNAME
FROM SYSCAT.KEYCOLUSE kc
JOIN SYSCAT.TABCONST tc
  ON tc.CONSTNAME = kc.CONSTNAME
 AND tc.TABSCHEMA = kc.TABSCHEMA
 AND tc.TABNAME = kc.TABNAME
WHERE tc.TYPE = 'P'
  AND kc.TABNAME = ?
  AND kc.TABSCHEMA = COALESCE(NULLIF(?, ''), CURRENT SCHEMA)
ORDER BY kc.COLSEQ`

func (r *db2Reader) ReadColumns(ctx context.Context, q Querier, ident tabledesc.TableIdentifier) ([]rawColumn, error) {
	var (
		columns []rawColumn
		keys    map[string]bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := q.QueryContext(gctx, db2ColumnsQuery, ident.Table, ident.Schema)
		if err != nil {
			return fmt.Errorf("db2 columns query: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				name, typeName, nulls, identity string
				length, scale                   int64
				defaultText, remarks            sql.NullString
			)

			err := rows.Scan(&name, &typeName, &length, &scale, &nulls,
				&defaultText, &identity, &remarks)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCatalogScan, err)
			}

			columns = append(columns, rawColumn{
				name:          name,
				dataType:      renderDB2Type(typeName, length, scale),
				nullable:      nulls == "Y",
				defaultText:   defaultText,
				autoIncrement: identity == "Y",
				comment:       remarks.String,
			})
		}

		return rows.Err()
	})

	g.Go(func() error {
		rows, err := q.QueryContext(gctx, db2PrimaryKeyQuery, ident.Table, ident.Schema)
		if err != nil {
			return fmt.Errorf("db2 key query: %w", err)
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

// renderDB2Type reassembles the parameterized type text from TYPENAME,
// LENGTH and SCALE.
func renderDB2Type(typeName string, length, scale int64) string {
	switch typeName {
	case "VARCHAR", "CHARACTER", "CHAR", "GRAPHIC", "VARGRAPHIC", "BINARY", "VARBINARY", "CLOB", "BLOB":
		return fmt.Sprintf("%s(%d)", typeName, length)
	case "DECIMAL", "NUMERIC":
		return fmt.Sprintf("%s(%d,%d)", typeName, length, scale)
	case "TIMESTAMP":
		if scale != 6 {
			return fmt.Sprintf("%s(%d)", typeName, scale)
		}

		return typeName
	default:
		return typeName
	}
}
