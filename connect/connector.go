// Package connect turns database URLs into ready *sql.DB pools with the
// matching dialect, so callers can hand both straight to the describe
// engine.
package connect

import (
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver (pgx)
	_ "github.com/mattn/go-sqlite3"     // SQLite driver
	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	tabledesc "github.com/shibukawa/tabledesc"
)

// Sentinel errors for URL handling and connection setup
var (
	ErrEmptyDatabaseURL      = errors.New("database URL is empty")
	ErrInvalidDatabaseURL    = errors.New("invalid database URL")
	ErrUnsupportedScheme     = errors.New("unsupported database URL scheme")
	ErrConnectionFailed      = errors.New("database connection failed")
	ErrInvalidConnectionInfo = errors.New("invalid connection information")
)

// Connector opens database connections from URLs.
type Connector struct {
	poolSettings PoolSettings
}

// PoolSettings defines database connection pool configuration.
type PoolSettings struct {
	MaxOpenConns    int // Maximum number of open connections
	MaxIdleConns    int // Maximum number of idle connections
	ConnMaxLifetime int // Maximum lifetime of connections in seconds
}

// ConnectionInfo contains parsed database connection information.
type ConnectionInfo struct {
	Dialect  tabledesc.Dialect
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Options  map[string]string
}

// NewConnector creates a connector with default pool settings.
func NewConnector() *Connector {
	return &Connector{
		poolSettings: PoolSettings{
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 300, // 5 minutes
		},
	}
}

// SetPoolSettings configures connection pool settings.
func (c *Connector) SetPoolSettings(settings PoolSettings) {
	c.poolSettings = settings
}

// GetPoolSettings returns current connection pool settings.
func (c *Connector) GetPoolSettings() PoolSettings {
	return c.poolSettings
}

// DialectFor extracts the dialect from a connection URL. Db2 URLs are
// rejected here: no pure Go driver exists, so Db2 callers open their own
// *sql.DB and pass it to the describe engine directly.
func (c *Connector) DialectFor(databaseURL string) (tabledesc.Dialect, error) {
	if databaseURL == "" {
		return "", ErrEmptyDatabaseURL
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", ErrInvalidDatabaseURL
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		return tabledesc.DialectPostgres, nil
	case "mysql", "mariadb":
		return tabledesc.DialectMySQL, nil
	case "sqlite", "sqlite3":
		return tabledesc.DialectSQLite, nil
	case "sqlserver", "mssql":
		return tabledesc.DialectMSSQL, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

// ValidateConnectionString validates the format of a database URL.
func (c *Connector) ValidateConnectionString(databaseURL string) error {
	dialect, err := c.DialectFor(databaseURL)
	if err != nil {
		return err
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return ErrInvalidDatabaseURL
	}

	switch dialect {
	case tabledesc.DialectPostgres, tabledesc.DialectMySQL:
		if u.Host == "" {
			return ErrInvalidDatabaseURL
		}

		if strings.TrimPrefix(u.Path, "/") == "" {
			return ErrInvalidDatabaseURL
		}
	case tabledesc.DialectSQLite:
		if u.Path == "" && u.Host == "" && u.Opaque == "" {
			return ErrInvalidDatabaseURL
		}
	case tabledesc.DialectMSSQL:
		if u.Host == "" {
			return ErrInvalidDatabaseURL
		}
	}

	return nil
}

// Connect establishes a database connection from a URL and applies the
// pool settings.
func (c *Connector) Connect(databaseURL string) (*sql.DB, error) {
	if err := c.ValidateConnectionString(databaseURL); err != nil {
		return nil, err
	}

	dialect, err := c.DialectFor(databaseURL)
	if err != nil {
		return nil, err
	}

	connStr, err := c.convertToDriverString(databaseURL, dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName(dialect), connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	db.SetMaxOpenConns(c.poolSettings.MaxOpenConns)
	db.SetMaxIdleConns(c.poolSettings.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(c.poolSettings.ConnMaxLifetime) * time.Second)

	return db, nil
}

// Close closes a database connection.
func (c *Connector) Close(db *sql.DB) error {
	if db == nil {
		return nil
	}

	return db.Close()
}

// Ping tests the database connection.
func (c *Connector) Ping(db *sql.DB) error {
	if db == nil {
		return ErrConnectionFailed
	}

	return db.Ping()
}

// ParseConnectionInfo parses a database URL into its parts.
func (c *Connector) ParseConnectionInfo(databaseURL string) (ConnectionInfo, error) {
	dialect, err := c.DialectFor(databaseURL)
	if err != nil {
		return ConnectionInfo{}, err
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return ConnectionInfo{}, ErrInvalidDatabaseURL
	}

	info := ConnectionInfo{
		Dialect: dialect,
		Options: make(map[string]string),
	}

	switch dialect {
	case tabledesc.DialectPostgres:
		info.Host = u.Hostname()
		info.Port = u.Port()

		if info.Port == "" {
			info.Port = "5432"
		}

		info.Database = strings.TrimPrefix(u.Path, "/")
	case tabledesc.DialectMySQL:
		info.Host = u.Hostname()
		info.Port = u.Port()

		if info.Port == "" {
			info.Port = "3306"
		}

		info.Database = strings.TrimPrefix(u.Path, "/")
	case tabledesc.DialectMSSQL:
		info.Host = u.Hostname()
		info.Port = u.Port()

		if info.Port == "" {
			info.Port = "1433"
		}

		info.Database = u.Query().Get("database")
	case tabledesc.DialectSQLite:
		if u.Opaque != "" {
			// sqlite:path/to/db.db format
			info.Database = u.Opaque
		} else if u.Host == "" {
			// sqlite:///path/to/db.db format
			info.Database = u.Path
		} else {
			// sqlite://./db.db format
			info.Database = u.Host + u.Path
		}
	}

	if u.User != nil {
		info.Username = u.User.Username()
		if password, ok := u.User.Password(); ok {
			info.Password = password
		}
	}

	for key, values := range u.Query() {
		if len(values) > 0 {
			info.Options[key] = values[0]
		}
	}

	return info, nil
}

// BuildConnectionString builds a connection URL from connection info.
func (c *Connector) BuildConnectionString(info ConnectionInfo) string {
	hostPort := net.JoinHostPort(info.Host, info.Port)

	auth := ""
	if info.Username != "" {
		auth = info.Username
		if info.Password != "" {
			auth += ":" + info.Password
		}

		auth += "@"
	}

	switch info.Dialect {
	case tabledesc.DialectPostgres:
		return fmt.Sprintf("postgres://%s%s/%s", auth, hostPort, info.Database)
	case tabledesc.DialectMySQL:
		return fmt.Sprintf("mysql://%s%s/%s", auth, hostPort, info.Database)
	case tabledesc.DialectMSSQL:
		return fmt.Sprintf("sqlserver://%s%s?database=%s", auth, hostPort, info.Database)
	case tabledesc.DialectSQLite:
		return "sqlite://" + info.Database
	default:
		return ""
	}
}

func (c *Connector) convertToDriverString(databaseURL string, dialect tabledesc.Dialect) (string, error) {
	switch dialect {
	case tabledesc.DialectPostgres:
		// pgx accepts postgres:// URLs natively; only the sslmode default
		// is filled in.
		if !strings.Contains(databaseURL, "sslmode=") {
			if strings.Contains(databaseURL, "?") {
				return databaseURL + "&sslmode=disable", nil
			}

			return databaseURL + "?sslmode=disable", nil
		}

		return databaseURL, nil

	case tabledesc.DialectMySQL:
		// Convert to go-sql-driver/mysql format:
		// user:password@tcp(host:port)/database
		info, err := c.ParseConnectionInfo(databaseURL)
		if err != nil {
			return "", err
		}

		if info.Host == "" || info.Database == "" {
			return "", ErrInvalidConnectionInfo
		}

		connStr := ""
		if info.Username != "" {
			connStr += info.Username
			if info.Password != "" {
				connStr += ":" + info.Password
			}

			connStr += "@"
		}

		connStr += "tcp(" + net.JoinHostPort(info.Host, info.Port) + ")/" + info.Database

		return connStr, nil

	case tabledesc.DialectMSSQL:
		// go-mssqldb accepts sqlserver:// URLs natively.
		if strings.HasPrefix(databaseURL, "mssql://") {
			return "sqlserver://" + strings.TrimPrefix(databaseURL, "mssql://"), nil
		}

		return databaseURL, nil

	case tabledesc.DialectSQLite:
		info, err := c.ParseConnectionInfo(databaseURL)
		if err != nil {
			return "", err
		}

		return info.Database, nil

	default:
		return "", ErrUnsupportedScheme
	}
}

func driverName(dialect tabledesc.Dialect) string {
	switch dialect {
	case tabledesc.DialectPostgres:
		return "pgx"
	case tabledesc.DialectMySQL:
		return "mysql"
	case tabledesc.DialectSQLite:
		return "sqlite3"
	case tabledesc.DialectMSSQL:
		return "sqlserver"
	default:
		return ""
	}
}

// Open is a convenience that resolves the dialect, opens the pool, and
// verifies it with a ping, ready to hand to the describe engine.
func Open(databaseURL string) (*sql.DB, tabledesc.Dialect, error) {
	c := NewConnector()

	dialect, err := c.DialectFor(databaseURL)
	if err != nil {
		return nil, "", err
	}

	db, err := c.Connect(databaseURL)
	if err != nil {
		return nil, "", err
	}

	if err := c.Ping(db); err != nil {
		c.Close(db)

		return nil, "", fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return db, dialect, nil
}
