package tabledesc

import (
	"errors"
	"fmt"
)

// Lookup errors
var (
	// ErrTableNotFound is the errors.Is target for *TableNotFoundError.
	ErrTableNotFound = errors.New("table not found")
	// ErrUnsupportedDialect indicates a dialect outside the supported set.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
	// ErrInvalidIdentifier indicates an empty or malformed table identifier.
	ErrInvalidIdentifier = errors.New("invalid table identifier")
)

// Wiring errors
var (
	// ErrNilQuerier indicates a describer was constructed without a query capability.
	ErrNilQuerier = errors.New("querier is nil")
	// ErrNoShadowStore indicates constraint tracking was requested for a dialect
	// without a configured shadow store.
	ErrNoShadowStore = errors.New("no constraint shadow store configured")
)

// Configuration errors
var (
	// ErrConfigValidation is returned when configuration validation fails.
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrDatabaseNotConfigured indicates the named database is missing from
	// the databases section of the configuration.
	ErrDatabaseNotConfigured = errors.New("database not found in configuration")
)

// TableNotFoundError is returned by describe operations when the catalog
// holds no rows for the resolved table identifier. It carries the looked-up
// name and schema and matches ErrTableNotFound through errors.Is.
type TableNotFoundError struct {
	Table  string
	Schema string
}

func (e *TableNotFoundError) Error() string {
	if e.Schema != "" {
		return fmt.Sprintf("No description found for table %s in schema %s. Check the table name and schema; remember, they _are_ case sensitive.", e.Table, e.Schema)
	}

	return fmt.Sprintf("No description found for table %s. Check the table name and schema; remember, they _are_ case sensitive.", e.Table)
}

// Is lets errors.Is(err, ErrTableNotFound) match without losing the
// table and schema carried by the concrete error.
func (e *TableNotFoundError) Is(target error) bool {
	return target == ErrTableNotFound
}
