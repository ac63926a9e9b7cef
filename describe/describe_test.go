package describe

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alecthomas/assert/v2"
	tabledesc "github.com/shibukawa/tabledesc"
	"github.com/shopspring/decimal"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, func(tabledesc.Dialect, ...Option) *Describer) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Dialects fan independent catalog queries out concurrently, so arrival
	// order is not deterministic.
	mock.MatchExpectationsInOrder(false)

	build := func(dialect tabledesc.Dialect, opts ...Option) *Describer {
		d, err := New(db, dialect, opts...)
		assert.NoError(t, err)

		return d
	}

	return mock, build
}

func TestNewValidation(t *testing.T) {
	t.Run("nil querier", func(t *testing.T) {
		_, err := New(nil, tabledesc.DialectPostgres)
		assert.IsError(t, err, tabledesc.ErrNilQuerier)
	})

	t.Run("unsupported dialect", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		_, err = New(db, tabledesc.Dialect("oracle"))
		assert.IsError(t, err, tabledesc.ErrUnsupportedDialect)
	})

	t.Run("shadow store only for restricted dialects", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		pg, err := New(db, tabledesc.DialectPostgres)
		assert.NoError(t, err)
		assert.IsError(t, pg.RecordConstraint(tabledesc.ConstraintEntry{Table: "t", Column: "c"}), tabledesc.ErrNoShadowStore)

		lite, err := New(db, tabledesc.DialectSQLite)
		assert.NoError(t, err)
		assert.NoError(t, lite.RecordConstraint(tabledesc.ConstraintEntry{Table: "t", Column: "c"}))
	})
}

func TestDescribePostgres(t *testing.T) {
	mock, build := newMock(t)

	mock.ExpectQuery("information_schema.columns").
		WithArgs("users", "public").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "data_type", "udt_name", "character_maximum_length",
			"numeric_precision", "numeric_scale", "is_nullable", "column_default",
			"is_identity", "column_comment",
		}).
			AddRow("id", "integer", "int4", nil, int64(32), int64(0), "NO", "nextval('users_id_seq'::regclass)", "NO", nil).
			AddRow("email", "character varying", "varchar", int64(255), nil, nil, "NO", nil, "NO", "contact address").
			AddRow("status", "USER-DEFINED", "user_status", nil, nil, nil, "YES", "'active'::user_status", "NO", nil).
			AddRow("balance", "numeric", "numeric", nil, int64(10), int64(2), "NO", "99.00", "NO", nil))

	mock.ExpectQuery("PRIMARY KEY").
		WithArgs("users", "public").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))

	mock.ExpectQuery("pg_enum").
		WithArgs("user_status").
		WillReturnRows(sqlmock.NewRows([]string{"enumlabel"}).AddRow("active").AddRow("retired"))

	d := build(tabledesc.DialectPostgres)

	desc, err := d.DescribeTable(context.Background(), "users", "public")
	assert.NoError(t, err)

	assert.Equal(t, []string{"id", "email", "status", "balance"}, desc.ColumnNames())
	assert.Equal(t, tabledesc.DialectPostgres, desc.Dialect)
	assert.Equal(t, "public", desc.Schema)

	id := desc.Column("id")
	assert.Equal(t, "integer", id.Type)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.False(t, id.AllowNull)
	assert.True(t, id.Default.IsExpression())
	assert.Equal(t, "nextval('users_id_seq'::regclass)", id.Default.Raw)

	email := desc.Column("email")
	assert.Equal(t, "character varying(255)", email.Type)
	assert.Equal(t, "contact address", email.Comment)
	assert.True(t, email.Default.IsAbsent())

	status := desc.Column("status")
	assert.Equal(t, "user_status", status.Type)
	assert.Equal(t, []string{"active", "retired"}, status.EnumValues)
	assert.True(t, status.Default.IsLiteral())
	assert.Equal(t, "active", status.Default.Value.(string))

	balance := desc.Column("balance")
	assert.Equal(t, "numeric(10,2)", balance.Type)
	assert.True(t, balance.Default.IsLiteral())
	dec, ok := balance.Default.Value.(decimal.Decimal)
	assert.True(t, ok)
	assert.True(t, dec.Equal(decimal.RequireFromString("99.00")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribePostgresCompositeKey(t *testing.T) {
	mock, build := newMock(t)

	mock.ExpectQuery("information_schema.columns").
		WithArgs("memberships", "public").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "data_type", "udt_name", "character_maximum_length",
			"numeric_precision", "numeric_scale", "is_nullable", "column_default",
			"is_identity", "column_comment",
		}).
			AddRow("user_id", "integer", "int4", nil, int64(32), int64(0), "NO", nil, "NO", nil).
			AddRow("team_id", "integer", "int4", nil, int64(32), int64(0), "NO", nil, "NO", nil).
			AddRow("role", "text", "text", nil, nil, nil, "NO", "'member'::text", "NO", nil))

	mock.ExpectQuery("PRIMARY KEY").
		WithArgs("memberships", "public").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("user_id").AddRow("team_id"))

	d := build(tabledesc.DialectPostgres)

	desc, err := d.DescribeTable(context.Background(), "memberships", "public")
	assert.NoError(t, err)

	assert.Equal(t, []string{"user_id", "team_id"}, desc.PrimaryKey())
	assert.False(t, desc.Column("role").PrimaryKey)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribeMySQL(t *testing.T) {
	mock, build := newMock(t)

	mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
		WithArgs("users", "").
		WillReturnRows(sqlmock.NewRows([]string{
			"COLUMN_NAME", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT",
			"COLUMN_KEY", "EXTRA", "COLUMN_COMMENT",
		}).
			AddRow("id", "int(11)", "NO", nil, "PRI", "auto_increment", "").
			AddRow("status", "enum('active','retired')", "YES", "active", "", "", "user state").
			AddRow("created_at", "datetime", "NO", "CURRENT_TIMESTAMP", "", "DEFAULT_GENERATED", ""))

	d := build(tabledesc.DialectMySQL)

	desc, err := d.DescribeTable(context.Background(), "users")
	assert.NoError(t, err)

	id := desc.Column("id")
	assert.Equal(t, "int(11)", id.Type)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)

	status := desc.Column("status")
	assert.Equal(t, []string{"active", "retired"}, status.EnumValues)
	assert.True(t, status.AllowNull)
	assert.Equal(t, "user state", status.Comment)
	assert.True(t, status.Default.IsLiteral())
	assert.Equal(t, "active", status.Default.Value.(string))

	created := desc.Column("created_at")
	assert.True(t, created.Default.IsExpression())
	assert.Equal(t, "CURRENT_TIMESTAMP", created.Default.Raw)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribeSQLite(t *testing.T) {
	mock, build := newMock(t)

	mock.ExpectQuery("table_info").
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 1, nil, 1).
			AddRow(1, "email", "TEXT", 0, nil, 0).
			AddRow(2, "flag", "BOOLEAN", 1, "1", 0))

	mock.ExpectQuery("sqlite_master").
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"sql"}).
			AddRow("CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, email TEXT, flag BOOLEAN NOT NULL DEFAULT 1)"))

	d := build(tabledesc.DialectSQLite)

	desc, err := d.DescribeTable(context.Background(), "users")
	assert.NoError(t, err)

	id := desc.Column("id")
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)

	email := desc.Column("email")
	assert.True(t, email.AllowNull)
	assert.True(t, email.Default.IsAbsent())

	flag := desc.Column("flag")
	assert.True(t, flag.Default.IsLiteral())
	assert.Equal(t, true, flag.Default.Value.(bool))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribeSQLiteShadowOverlay(t *testing.T) {
	mock, build := newMock(t)

	mock.ExpectQuery("table_info").
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 1, nil, 1).
			AddRow(1, "email", "TEXT", 0, nil, 0).
			AddRow(2, "org_id", "INTEGER", 0, nil, 0))

	mock.ExpectQuery("sqlite_master").
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"sql"}).
			AddRow("CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT, org_id INTEGER)"))

	d := build(tabledesc.DialectSQLite)

	assert.NoError(t, d.RecordConstraint(tabledesc.ConstraintEntry{Table: "users", Column: "email", Unique: true}))
	assert.NoError(t, d.RecordConstraint(tabledesc.ConstraintEntry{
		Table:      "users",
		Column:     "org_id",
		References: &tabledesc.ForeignKeyReference{Table: "orgs", Key: "id"},
	}))

	desc, err := d.DescribeTable(context.Background(), "users")
	assert.NoError(t, err)

	assert.True(t, desc.Column("email").Unique)
	assert.Equal(t, &tabledesc.ForeignKeyReference{Table: "orgs", Key: "id"}, desc.Column("org_id").References)

	entries, err := d.Constraints("users")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(entries))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribeMSSQL(t *testing.T) {
	mock, build := newMock(t)

	// The key query joins sys.columns too; match on the join only the
	// columns query has.
	mock.ExpectQuery("sys.default_constraints").
		WithArgs("articles", "").
		WillReturnRows(sqlmock.NewRows([]string{
			"name", "type_name", "max_length", "precision", "scale",
			"is_nullable", "is_identity", "definition", "column_comment",
		}).
			AddRow("id", "int", int64(4), int64(10), int64(0), false, true, nil, nil).
			AddRow("title", "nvarchar", int64(100), int64(0), int64(0), false, false, "(N'untitled')", "display title").
			AddRow("created", "datetime2", int64(8), int64(27), int64(7), false, false, "(getdate())", nil))

	mock.ExpectQuery("is_primary_key").
		WithArgs("articles", "").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("id"))

	d := build(tabledesc.DialectMSSQL)

	desc, err := d.DescribeTable(context.Background(), "articles")
	assert.NoError(t, err)

	id := desc.Column("id")
	assert.Equal(t, "int", id.Type)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)

	title := desc.Column("title")
	assert.Equal(t, "nvarchar(50)", title.Type)
	assert.Equal(t, "display title", title.Comment)
	assert.True(t, title.Default.IsLiteral())
	assert.Equal(t, "untitled", title.Default.Value.(string))
	assert.Equal(t, "(N'untitled')", title.Default.Raw)

	created := desc.Column("created")
	assert.Equal(t, "datetime2(7)", created.Type)
	assert.True(t, created.Default.IsExpression())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribeDB2(t *testing.T) {
	mock, build := newMock(t)

	mock.ExpectQuery("SYSCAT.COLUMNS").
		WithArgs("CUSTOMERS", "").
		WillReturnRows(sqlmock.NewRows([]string{
			"COLNAME", "TYPENAME", "LENGTH", "SCALE", "NULLS", "DEFAULT", "IDENTITY", "REMARKS",
		}).
			AddRow("ID", "INTEGER", int64(4), int64(0), "N", nil, "Y", nil).
			AddRow("NAME", "VARCHAR", int64(50), int64(0), "Y", "'abc'", "N", "customer name"))

	mock.ExpectQuery("SYSCAT.KEYCOLUSE").
		WithArgs("CUSTOMERS", "").
		WillReturnRows(sqlmock.NewRows([]string{"COLNAME"}).AddRow("ID"))

	d := build(tabledesc.DialectDB2)

	desc, err := d.DescribeTable(context.Background(), "CUSTOMERS")
	assert.NoError(t, err)

	id := desc.Column("ID")
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.False(t, id.AllowNull)

	name := desc.Column("NAME")
	assert.Equal(t, "VARCHAR(50)", name.Type)
	assert.Equal(t, "customer name", name.Comment)
	assert.True(t, name.Default.IsLiteral())
	assert.Equal(t, "abc", name.Default.Value.(string))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribeTableNotFound(t *testing.T) {
	t.Run("with schema in the message", func(t *testing.T) {
		mock, build := newMock(t)

		mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
			WithArgs("missing", "analytics").
			WillReturnRows(sqlmock.NewRows([]string{
				"COLUMN_NAME", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT",
				"COLUMN_KEY", "EXTRA", "COLUMN_COMMENT",
			}))

		d := build(tabledesc.DialectMySQL)

		_, err := d.DescribeTable(context.Background(), "missing", "analytics")
		assert.Error(t, err)
		assert.IsError(t, err, tabledesc.ErrTableNotFound)

		var notFound *tabledesc.TableNotFoundError
		assert.True(t, errors.As(err, &notFound))
		assert.Equal(t, "missing", notFound.Table)
		assert.Equal(t, "analytics", notFound.Schema)
		assert.Equal(t,
			"No description found for table missing in schema analytics. Check the table name and schema; remember, they _are_ case sensitive.",
			err.Error())
	})

	t.Run("without schema", func(t *testing.T) {
		mock, build := newMock(t)

		mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
			WithArgs("missing", "").
			WillReturnRows(sqlmock.NewRows([]string{
				"COLUMN_NAME", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT",
				"COLUMN_KEY", "EXTRA", "COLUMN_COMMENT",
			}))

		d := build(tabledesc.DialectMySQL)

		_, err := d.DescribeTable(context.Background(), "missing")
		assert.Error(t, err)
		assert.Equal(t,
			"No description found for table missing. Check the table name and schema; remember, they _are_ case sensitive.",
			err.Error())
	})
}

func TestDescribeTableSchemaResolution(t *testing.T) {
	t.Run("dotted identifier", func(t *testing.T) {
		mock, build := newMock(t)

		mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
			WithArgs("events", "analytics").
			WillReturnRows(sqlmock.NewRows([]string{
				"COLUMN_NAME", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT",
				"COLUMN_KEY", "EXTRA", "COLUMN_COMMENT",
			}).AddRow("id", "int(11)", "NO", nil, "PRI", "", ""))

		d := build(tabledesc.DialectMySQL)

		desc, err := d.DescribeTable(context.Background(), "analytics.events")
		assert.NoError(t, err)
		assert.Equal(t, "events", desc.Table)
		assert.Equal(t, "analytics", desc.Schema)
	})

	t.Run("explicit schema argument wins over the prefix", func(t *testing.T) {
		mock, build := newMock(t)

		mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
			WithArgs("events", "archive").
			WillReturnRows(sqlmock.NewRows([]string{
				"COLUMN_NAME", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT",
				"COLUMN_KEY", "EXTRA", "COLUMN_COMMENT",
			}).AddRow("id", "int(11)", "NO", nil, "PRI", "", ""))

		d := build(tabledesc.DialectMySQL)

		desc, err := d.DescribeTable(context.Background(), "analytics.events", "archive")
		assert.NoError(t, err)
		assert.Equal(t, "archive", desc.Schema)
	})

	t.Run("default schema option fills unqualified names", func(t *testing.T) {
		mock, build := newMock(t)

		mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
			WithArgs("users", "analytics").
			WillReturnRows(sqlmock.NewRows([]string{
				"COLUMN_NAME", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT",
				"COLUMN_KEY", "EXTRA", "COLUMN_COMMENT",
			}).AddRow("id", "int(11)", "NO", nil, "PRI", "", ""))

		d := build(tabledesc.DialectMySQL, WithDefaultSchema("analytics"))

		desc, err := d.DescribeTable(context.Background(), "users")
		assert.NoError(t, err)
		assert.Equal(t, "analytics", desc.Schema)
	})

	t.Run("empty identifier rejected", func(t *testing.T) {
		_, build := newMock(t)
		d := build(tabledesc.DialectMySQL)

		_, err := d.DescribeTable(context.Background(), "")
		assert.IsError(t, err, tabledesc.ErrInvalidIdentifier)
	})
}

func TestDescribeQueryFailureAborts(t *testing.T) {
	mock, build := newMock(t)

	boom := errors.New("connection reset")

	mock.ExpectQuery("INFORMATION_SCHEMA.COLUMNS").
		WithArgs("users", "").
		WillReturnError(boom)

	d := build(tabledesc.DialectMySQL)

	_, err := d.DescribeTable(context.Background(), "users")
	assert.Error(t, err)
	assert.IsError(t, err, boom)

	// A failed catalog query is never misreported as a missing table.
	assert.False(t, errors.Is(err, tabledesc.ErrTableNotFound))
}
