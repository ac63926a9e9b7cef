package tabledesc

import (
	"fmt"
	"strings"
)

// Dialect represents supported database dialects
// This type is shared across all packages
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
	DialectMSSQL    Dialect = "mssql"
	DialectDB2      Dialect = "db2"
)

// ParseDialect resolves a dialect or driver name to its canonical Dialect.
// Driver aliases ("pgx", "sqlite3", "sqlserver", "mariadb") map to the
// dialect that owns them.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx", "pg":
		return DialectPostgres, nil
	case "mysql", "mariadb":
		return DialectMySQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "mssql", "sqlserver":
		return DialectMSSQL, nil
	case "db2", "ibmdb2", "go_ibm_db":
		return DialectDB2, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDialect, name)
	}
}

// Valid reports whether d is one of the supported dialects.
func (d Dialect) Valid() bool {
	switch d {
	case DialectPostgres, DialectMySQL, DialectSQLite, DialectMSSQL, DialectDB2:
		return true
	default:
		return false
	}
}

// SupportsComments reports whether the dialect stores column comments in
// its catalog. SQLite has no comment storage at all.
func (d Dialect) SupportsComments() bool {
	return d != DialectSQLite
}

// SupportsEnums reports whether the dialect has enumerated column types
// whose member labels can be read back from the catalog.
func (d Dialect) SupportsEnums() bool {
	return d == DialectPostgres || d == DialectMySQL
}

// NeedsConstraintShadow reports whether unique and foreign key constraints
// must be tracked outside the live catalog. SQLite cannot add or drop such
// constraints through ALTER TABLE, so declarations made at creation time
// are kept in a shadow store to survive table rebuilds.
func (d Dialect) NeedsConstraintShadow() bool {
	return d == DialectSQLite
}

// DefaultSchema returns the schema an unqualified table name resolves to
// when neither the identifier nor the connection says otherwise. An empty
// string means the connection's current database or schema decides, which
// the dialect readers resolve server side.
func (d Dialect) DefaultSchema() string {
	switch d {
	case DialectPostgres:
		return "public"
	case DialectSQLite:
		return "main"
	case DialectMSSQL:
		return "dbo"
	default:
		return ""
	}
}
