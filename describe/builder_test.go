package describe

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	tabledesc "github.com/shibukawa/tabledesc"
)

func TestBuildDescriptionPreservesCatalogOrder(t *testing.T) {
	rows := []rawColumn{
		{name: "id", dataType: "INTEGER", primaryKey: true, autoIncrement: true},
		{name: "email", dataType: "TEXT", nullable: true},
		{name: "created_at", dataType: "DATETIME", nullable: true, defaultText: nullString("CURRENT_TIMESTAMP")},
	}

	ident := tabledesc.TableIdentifier{Table: "users", Schema: "main"}
	desc := buildDescription(tabledesc.DialectSQLite, ident, rows, nil)

	assert.Equal(t, "users", desc.Table)
	assert.Equal(t, "main", desc.Schema)
	assert.Equal(t, tabledesc.DialectSQLite, desc.Dialect)
	assert.Equal(t, []string{"id", "email", "created_at"}, desc.ColumnNames())

	id := desc.Column("id")
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.False(t, id.AllowNull)
	assert.True(t, id.Default.IsAbsent())

	created := desc.Column("created_at")
	assert.True(t, created.Default.IsExpression())
	assert.Equal(t, "CURRENT_TIMESTAMP", created.Default.Raw)
}

func TestBuildDescriptionShadowOverlay(t *testing.T) {
	rows := []rawColumn{
		{name: "id", dataType: "INTEGER", primaryKey: true},
		{name: "email", dataType: "TEXT", nullable: true},
		{name: "org_id", dataType: "INTEGER", nullable: true},
	}

	shadow := []tabledesc.ConstraintEntry{
		{Table: "users", Column: "email", Unique: true},
		{Table: "users", Column: "org_id", References: &tabledesc.ForeignKeyReference{Table: "orgs", Key: "id"}},
		{Table: "users", Column: "dropped_col", Unique: true},
	}

	ident := tabledesc.TableIdentifier{Table: "users"}
	desc := buildDescription(tabledesc.DialectSQLite, ident, rows, shadow)

	// Shadow entries decorate matching columns only; the stale entry for a
	// column the catalog no longer has leaves no trace.
	assert.Equal(t, 3, len(desc.Columns))

	email := desc.Column("email")
	assert.True(t, email.Unique)
	assert.Zero(t, email.References)

	org := desc.Column("org_id")
	assert.False(t, org.Unique)
	assert.Equal(t, &tabledesc.ForeignKeyReference{Table: "orgs", Key: "id"}, org.References)

	// The overlay copies the reference so the shadow store's entry cannot
	// be mutated through the description.
	org.References.Key = "uuid"
	assert.Equal(t, "id", shadow[1].References.Key)

	id := desc.Column("id")
	assert.False(t, id.Unique)
	assert.Zero(t, id.References)
}

func TestBuildDescriptionNormalizesPerDialect(t *testing.T) {
	rows := []rawColumn{
		{name: "status", dataType: "character varying(16)", nullable: false, defaultText: nullString("'active'::character varying")},
	}

	ident := tabledesc.TableIdentifier{Table: "accounts", Schema: "public"}
	desc := buildDescription(tabledesc.DialectPostgres, ident, rows, nil)

	status := desc.Column("status")
	assert.True(t, status.Default.IsLiteral())
	assert.Equal(t, "'active'::character varying", status.Default.Raw)
	assert.Equal(t, "active", status.Default.Value.(string))
}
