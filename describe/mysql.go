package describe

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	tabledesc "github.com/shibukawa/tabledesc"
)

// mysqlReader introspects the MySQL and MariaDB catalog. A single
// INFORMATION_SCHEMA.COLUMNS query carries everything: COLUMN_TYPE is the
// full native rendering including lengths and enum labels, COLUMN_KEY
// marks primary key membership, and EXTRA flags auto increment and
// expression defaults.
type mysqlReader struct{}

const mysqlColumnsQuery = `
SELECT
    COLUMN_NAME,
    COLUMN_TYPE,
    IS_NULLABLE,
    COLUMN_DEFAULT,
    COLUMN_KEY,
    EXTRA,
    COLUMN_COMMENT
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_NAME = ?
  AND TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
ORDER BY ORDINAL_POSITION`

func (r *mysqlReader) ReadColumns(ctx context.Context, q Querier, ident tabledesc.TableIdentifier) ([]rawColumn, error) {
	rows, err := q.QueryContext(ctx, mysqlColumnsQuery, ident.Table, ident.Schema)
	if err != nil {
		return nil, fmt.Errorf("mysql columns query: %w", err)
	}
	defer rows.Close()

	var columns []rawColumn

	for rows.Next() {
		var (
			name, columnType, isNullable, columnKey, extra, comment string
			columnDefault                                           sql.NullString
		)

		err := rows.Scan(&name, &columnType, &isNullable, &columnDefault, &columnKey, &extra, &comment)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogScan, err)
		}

		extraUpper := strings.ToUpper(extra)

		col := rawColumn{
			name:     name,
			dataType: columnType,
			nullable: isNullable == "YES",
			// COLUMN_DEFAULT stores literal defaults with their quoting
			// already removed.
			defaultText:    columnDefault,
			defaultLiteral: true,
			defaultExpr:    strings.Contains(extraUpper, "DEFAULT_GENERATED"),
			primaryKey:     columnKey == "PRI",
			autoIncrement:  strings.Contains(extraUpper, "AUTO_INCREMENT"),
			comment:        comment,
			enumValues:     parseMySQLEnumValues(columnType),
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// EnumValuesFromColumnType extracts the member labels from a MySQL enum
// or set column type rendering such as "enum('a','b')". Other type
// renderings return nil. Offline sources share it so artefact columns get
// the same enum handling as live ones.
func EnumValuesFromColumnType(columnType string) []string {
	return parseMySQLEnumValues(columnType)
}

// parseMySQLEnumValues extracts the labels of an enum('a','b') or
// set('a','b') column type in declaration order. Doubled quotes inside a
// label fold back to a single quote. Non enum types yield nil.
func parseMySQLEnumValues(columnType string) []string {
	lower := strings.ToLower(columnType)

	var start int

	switch {
	case strings.HasPrefix(lower, "enum("):
		start = len("enum(")
	case strings.HasPrefix(lower, "set("):
		start = len("set(")
	default:
		return nil
	}

	end := strings.LastIndexByte(columnType, ')')
	if end < start {
		return nil
	}

	body := columnType[start:end]

	var (
		labels  []string
		current strings.Builder
		inQuote bool
	)

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\'':
			if inQuote && i+1 < len(body) && body[i+1] == '\'' {
				current.WriteByte('\'')
				i++

				continue
			}

			if inQuote {
				labels = append(labels, current.String())
				current.Reset()
			}

			inQuote = !inQuote
		case inQuote:
			current.WriteByte(c)
		}
	}

	return labels
}
