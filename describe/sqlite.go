package describe

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	tabledesc "github.com/shibukawa/tabledesc"
	"golang.org/x/sync/errgroup"
)

// sqliteReader introspects SQLite through PRAGMA table_info plus the table
// DDL from sqlite_master, which is the only place the AUTOINCREMENT keyword
// survives. The two queries run concurrently. An empty schema means the
// main database.
type sqliteReader struct{}

func (r *sqliteReader) ReadColumns(ctx context.Context, q Querier, ident tabledesc.TableIdentifier) ([]rawColumn, error) {
	schema := ident.Schema
	if schema == "" {
		schema = "main"
	}

	var (
		columns []rawColumn
		ddl     string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// PRAGMA arguments cannot be bound, so identifiers go in quoted.
		pragma := fmt.Sprintf("PRAGMA %s.table_info(%s)",
			quoteSQLiteIdent(schema), quoteSQLiteIdent(ident.Table))

		rows, err := q.QueryContext(gctx, pragma)
		if err != nil {
			return fmt.Errorf("sqlite table_info: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				cid, notNull, pk int
				name, dataType   string
				defaultValue     sql.NullString
			)

			if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
				return fmt.Errorf("%w: %w", ErrCatalogScan, err)
			}

			columns = append(columns, rawColumn{
				name:     name,
				dataType: dataType,
				nullable: notNull == 0,
				// table_info reports the default clause verbatim from the
				// DDL, quoting included.
				defaultText: defaultValue,
				primaryKey:  pk > 0,
			})
		}

		return rows.Err()
	})

	g.Go(func() error {
		query := fmt.Sprintf("SELECT sql FROM %s.sqlite_master WHERE type = 'table' AND name = ?",
			quoteSQLiteIdent(schema))

		rows, err := q.QueryContext(gctx, query, ident.Table)
		if err != nil {
			return fmt.Errorf("sqlite master query: %w", err)
		}
		defer rows.Close()

		if rows.Next() {
			var createSQL sql.NullString
			if err := rows.Scan(&createSQL); err != nil {
				return fmt.Errorf("%w: %w", ErrCatalogScan, err)
			}

			ddl = createSQL.String
		}

		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// AUTOINCREMENT is only legal on a single INTEGER PRIMARY KEY column,
	// so the keyword in the DDL pins exactly that column.
	if strings.Contains(strings.ToUpper(ddl), "AUTOINCREMENT") {
		for i := range columns {
			if columns[i].primaryKey && strings.EqualFold(columns[i].dataType, "INTEGER") {
				columns[i].autoIncrement = true
			}
		}
	}

	return columns, nil
}

// quoteSQLiteIdent double quotes an identifier, doubling embedded quotes.
func quoteSQLiteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
