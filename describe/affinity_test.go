package describe

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	tabledesc "github.com/shibukawa/tabledesc"
)

func TestAffinityOf(t *testing.T) {
	tests := []struct {
		dialect  tabledesc.Dialect
		declared string
		want     typeAffinity
	}{
		{tabledesc.DialectPostgres, "integer", affinityInteger},
		{tabledesc.DialectPostgres, "character varying(255)", affinityString},
		{tabledesc.DialectPostgres, "numeric(10,2)", affinityDecimal},
		{tabledesc.DialectPostgres, "double precision", affinityFloat},
		{tabledesc.DialectPostgres, "timestamp with time zone", affinityTemporal},
		{tabledesc.DialectPostgres, "uuid", affinityUUID},
		{tabledesc.DialectPostgres, "jsonb", affinityOther},
		{tabledesc.DialectPostgres, "text[]", affinityOther},

		{tabledesc.DialectMySQL, "int(11)", affinityInteger},
		{tabledesc.DialectMySQL, "tinyint(1)", affinityBoolean},
		{tabledesc.DialectMySQL, "tinyint(4)", affinityInteger},
		{tabledesc.DialectMySQL, "bigint(20) unsigned", affinityInteger},
		{tabledesc.DialectMySQL, "int unsigned", affinityInteger},
		{tabledesc.DialectMySQL, "enum('a','b')", affinityEnum},
		{tabledesc.DialectMySQL, "decimal(10,2)", affinityDecimal},
		{tabledesc.DialectMySQL, "varchar(255)", affinityString},
		{tabledesc.DialectMySQL, "datetime", affinityTemporal},
		{tabledesc.DialectMySQL, "json", affinityOther},

		{tabledesc.DialectSQLite, "INTEGER", affinityInteger},
		{tabledesc.DialectSQLite, "VARCHAR(30)", affinityString},
		{tabledesc.DialectSQLite, "BOOLEAN", affinityBoolean},
		{tabledesc.DialectSQLite, "NUMERIC(10,2)", affinityDecimal},
		{tabledesc.DialectSQLite, "DATETIME", affinityTemporal},
		{tabledesc.DialectSQLite, "BIGINT", affinityInteger},
		{tabledesc.DialectSQLite, "UUID", affinityUUID},
		{tabledesc.DialectSQLite, "BLOB", affinityBinary},
		{tabledesc.DialectSQLite, "", affinityBinary},
		{tabledesc.DialectSQLite, "DOUBLE", affinityFloat},

		{tabledesc.DialectMSSQL, "int", affinityInteger},
		{tabledesc.DialectMSSQL, "bit", affinityBoolean},
		{tabledesc.DialectMSSQL, "uniqueidentifier", affinityUUID},
		{tabledesc.DialectMSSQL, "nvarchar(50)", affinityString},
		{tabledesc.DialectMSSQL, "money", affinityDecimal},
		{tabledesc.DialectMSSQL, "datetime2(7)", affinityTemporal},

		{tabledesc.DialectDB2, "INTEGER", affinityInteger},
		{tabledesc.DialectDB2, "VARCHAR(50)", affinityString},
		{tabledesc.DialectDB2, "DECIMAL(10,2)", affinityDecimal},
		{tabledesc.DialectDB2, "TIMESTAMP", affinityTemporal},
		{tabledesc.DialectDB2, "XML", affinityOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect)+"/"+tt.declared, func(t *testing.T) {
			assert.Equal(t, tt.want, affinityOf(tt.dialect, tt.declared))
		})
	}
}
