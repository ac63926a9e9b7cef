package describe

import (
	"context"
	"database/sql"
	"fmt"

	tabledesc "github.com/shibukawa/tabledesc"
)

// Querier is the query execution capability the engine consumes. It is
// satisfied by *sql.DB, *sql.Tx, and *sql.Conn. Dialects that fan catalog
// queries out concurrently require an implementation that tolerates
// concurrent calls; *sql.DB does, *sql.Tx does not.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// rawColumn is the common row shape every dialect reader normalizes its
// catalog rows into. Readers translate unit-of-measure differences only
// ("YES"/"NO" strings to bools, identity flags, key ordinals); default
// clause text stays exactly as the backend reports it.
type rawColumn struct {
	name     string
	dataType string
	nullable bool

	// defaultText is the catalog's default clause. Valid == false means the
	// column carries no default clause at all.
	defaultText sql.NullString
	// defaultLiteral marks catalogs that store literal defaults already
	// unquoted (MySQL information_schema reports 'abc' as abc).
	defaultLiteral bool
	// defaultExpr marks defaults the catalog itself flags as expressions
	// (MySQL EXTRA: DEFAULT_GENERATED).
	defaultExpr bool

	primaryKey    bool
	autoIncrement bool
	comment       string
	enumValues    []string
}

// catalogReader issues the dialect specific introspection queries for one
// table. A missing table yields an empty slice and a nil error; the facade
// owns the not-found decision, so "table absent" and "catalog query failed"
// stay distinguishable.
type catalogReader interface {
	ReadColumns(ctx context.Context, q Querier, ident tabledesc.TableIdentifier) ([]rawColumn, error)
}

// newCatalogReader dispatches over the closed dialect set.
func newCatalogReader(dialect tabledesc.Dialect) (catalogReader, error) {
	switch dialect {
	case tabledesc.DialectPostgres:
		return &postgresReader{}, nil
	case tabledesc.DialectMySQL:
		return &mysqlReader{}, nil
	case tabledesc.DialectSQLite:
		return &sqliteReader{}, nil
	case tabledesc.DialectMSSQL:
		return &mssqlReader{}, nil
	case tabledesc.DialectDB2:
		return &db2Reader{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", tabledesc.ErrUnsupportedDialect, dialect)
	}
}

// collectKeyColumns drains a single-column result set of primary key member
// names. Several readers share this shape for their key membership queries.
func collectKeyColumns(rows *sql.Rows) (map[string]bool, error) {
	defer rows.Close()

	keys := make(map[string]bool)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogScan, err)
		}

		keys[name] = true
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}
