package tabledesc

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParseTableIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TableIdentifier
	}{
		{"bare name", "users", TableIdentifier{Table: "users"}},
		{"schema qualified", "archive.users", TableIdentifier{Table: "users", Schema: "archive"}},
		{"only first dot splits", "a.b.c", TableIdentifier{Table: "b.c", Schema: "a"}},
		{"case preserved", "Public.Users", TableIdentifier{Table: "Users", Schema: "Public"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTableIdentifier(tt.input))
		})
	}
}

func TestTableIdentifierString(t *testing.T) {
	assert.Equal(t, "users", TableIdentifier{Table: "users"}.String())
	assert.Equal(t, "archive.users", TableIdentifier{Table: "users", Schema: "archive"}.String())
}

func TestTableDescriptionLookups(t *testing.T) {
	desc := &TableDescription{
		Table:   "orders",
		Dialect: DialectPostgres,
		Columns: []*ColumnDescription{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "tenant", Type: "integer", PrimaryKey: true},
			{Name: "amount", Type: "numeric(10,2)"},
		},
	}

	t.Run("column by exact name", func(t *testing.T) {
		col := desc.Column("amount")
		assert.NotZero(t, col)
		assert.Equal(t, "numeric(10,2)", col.Type)
		assert.Zero(t, desc.Column("Amount"))
		assert.Zero(t, desc.Column("missing"))
	})

	t.Run("column map covers every column once", func(t *testing.T) {
		m := desc.ColumnMap()
		assert.Equal(t, 3, len(m))
		assert.Equal(t, desc.Columns[0], m["id"])
	})

	t.Run("names keep catalog order", func(t *testing.T) {
		assert.Equal(t, []string{"id", "tenant", "amount"}, desc.ColumnNames())
	})

	t.Run("composite primary key reports all members", func(t *testing.T) {
		assert.Equal(t, []string{"id", "tenant"}, desc.PrimaryKey())
	})
}
