package describe

import (
	"strings"

	tabledesc "github.com/shibukawa/tabledesc"
)

// typeAffinity groups declared column types by how their default literals
// decode. The declared type string itself is never rewritten; affinity only
// steers the normalizer.
type typeAffinity int

const (
	affinityOther typeAffinity = iota
	affinityInteger
	affinityFloat
	affinityDecimal
	affinityBoolean
	affinityString
	affinityUUID
	affinityTemporal
	affinityBinary
	affinityEnum
)

var postgresAffinity = map[string]typeAffinity{
	"smallint":                    affinityInteger,
	"integer":                     affinityInteger,
	"bigint":                      affinityInteger,
	"int2":                        affinityInteger,
	"int4":                        affinityInteger,
	"int8":                        affinityInteger,
	"smallserial":                 affinityInteger,
	"serial":                      affinityInteger,
	"bigserial":                   affinityInteger,
	"real":                        affinityFloat,
	"float4":                      affinityFloat,
	"float8":                      affinityFloat,
	"double precision":            affinityFloat,
	"numeric":                     affinityDecimal,
	"decimal":                     affinityDecimal,
	"boolean":                     affinityBoolean,
	"bool":                        affinityBoolean,
	"text":                        affinityString,
	"character varying":           affinityString,
	"varchar":                     affinityString,
	"character":                   affinityString,
	"char":                        affinityString,
	"bpchar":                      affinityString,
	"uuid":                        affinityUUID,
	"date":                        affinityTemporal,
	"time":                        affinityTemporal,
	"timetz":                      affinityTemporal,
	"time with time zone":         affinityTemporal,
	"time without time zone":      affinityTemporal,
	"timestamp":                   affinityTemporal,
	"timestamptz":                 affinityTemporal,
	"timestamp with time zone":    affinityTemporal,
	"timestamp without time zone": affinityTemporal,
	"bytea":                       affinityBinary,
}

var mysqlAffinity = map[string]typeAffinity{
	"tinyint":    affinityInteger,
	"smallint":   affinityInteger,
	"mediumint":  affinityInteger,
	"int":        affinityInteger,
	"integer":    affinityInteger,
	"bigint":     affinityInteger,
	"float":      affinityFloat,
	"double":     affinityFloat,
	"real":       affinityFloat,
	"decimal":    affinityDecimal,
	"numeric":    affinityDecimal,
	"boolean":    affinityBoolean,
	"bool":       affinityBoolean,
	"char":       affinityString,
	"varchar":    affinityString,
	"tinytext":   affinityString,
	"text":       affinityString,
	"mediumtext": affinityString,
	"longtext":   affinityString,
	"enum":       affinityEnum,
	"set":        affinityEnum,
	"date":       affinityTemporal,
	"time":       affinityTemporal,
	"datetime":   affinityTemporal,
	"timestamp":  affinityTemporal,
	"year":       affinityTemporal,
	"binary":     affinityBinary,
	"varbinary":  affinityBinary,
	"tinyblob":   affinityBinary,
	"blob":       affinityBinary,
	"mediumblob": affinityBinary,
	"longblob":   affinityBinary,
}

var mssqlAffinity = map[string]typeAffinity{
	"tinyint":          affinityInteger,
	"smallint":         affinityInteger,
	"int":              affinityInteger,
	"bigint":           affinityInteger,
	"real":             affinityFloat,
	"float":            affinityFloat,
	"decimal":          affinityDecimal,
	"numeric":          affinityDecimal,
	"money":            affinityDecimal,
	"smallmoney":       affinityDecimal,
	"bit":              affinityBoolean,
	"char":             affinityString,
	"varchar":          affinityString,
	"text":             affinityString,
	"nchar":            affinityString,
	"nvarchar":         affinityString,
	"ntext":            affinityString,
	"uniqueidentifier": affinityUUID,
	"date":             affinityTemporal,
	"time":             affinityTemporal,
	"datetime":         affinityTemporal,
	"datetime2":        affinityTemporal,
	"smalldatetime":    affinityTemporal,
	"datetimeoffset":   affinityTemporal,
	"binary":           affinityBinary,
	"varbinary":        affinityBinary,
	"image":            affinityBinary,
}

var db2Affinity = map[string]typeAffinity{
	"smallint":   affinityInteger,
	"integer":    affinityInteger,
	"int":        affinityInteger,
	"bigint":     affinityInteger,
	"real":       affinityFloat,
	"double":     affinityFloat,
	"float":      affinityFloat,
	"decimal":    affinityDecimal,
	"numeric":    affinityDecimal,
	"decfloat":   affinityDecimal,
	"boolean":    affinityBoolean,
	"character":  affinityString,
	"char":       affinityString,
	"varchar":    affinityString,
	"clob":       affinityString,
	"graphic":    affinityString,
	"vargraphic": affinityString,
	"date":       affinityTemporal,
	"time":       affinityTemporal,
	"timestamp":  affinityTemporal,
	"binary":     affinityBinary,
	"varbinary":  affinityBinary,
	"blob":       affinityBinary,
}

// affinityOf classifies a declared type for default-literal decoding.
// Parameter lists are stripped before lookup ("numeric(10,2)" looks up
// "numeric"); MySQL's tinyint(1) boolean convention is checked first since
// its meaning lives in the parameter itself.
func affinityOf(dialect tabledesc.Dialect, declaredType string) typeAffinity {
	normalized := strings.ToLower(strings.TrimSpace(declaredType))

	if dialect == tabledesc.DialectMySQL && strings.HasPrefix(normalized, "tinyint(1)") {
		return affinityBoolean
	}

	base := strings.TrimSpace(strings.Split(normalized, "(")[0])

	switch dialect {
	case tabledesc.DialectPostgres:
		if aff, ok := postgresAffinity[base]; ok {
			return aff
		}

		if strings.HasSuffix(base, "[]") {
			return affinityOther
		}
	case tabledesc.DialectMySQL:
		if aff, ok := mysqlAffinity[base]; ok {
			return aff
		}

		// "int unsigned", "bigint unsigned zerofill"
		if head, _, ok := strings.Cut(base, " "); ok {
			if aff, found := mysqlAffinity[head]; found {
				return aff
			}
		}
	case tabledesc.DialectMSSQL:
		if aff, ok := mssqlAffinity[base]; ok {
			return aff
		}
	case tabledesc.DialectDB2:
		if aff, ok := db2Affinity[base]; ok {
			return aff
		}
	case tabledesc.DialectSQLite:
		return sqliteAffinity(base)
	}

	return affinityOther
}

// sqliteAffinity follows SQLite's substring based affinity rules: column
// types are free text, so classification goes by fragments in order of
// precedence.
func sqliteAffinity(base string) typeAffinity {
	switch {
	case base == "":
		return affinityBinary
	case strings.Contains(base, "bool"):
		return affinityBoolean
	case strings.Contains(base, "uuid") || strings.Contains(base, "guid"):
		return affinityUUID
	case strings.Contains(base, "decimal") || strings.Contains(base, "numeric"):
		return affinityDecimal
	case strings.Contains(base, "datetime") || strings.Contains(base, "date") || strings.Contains(base, "time"):
		return affinityTemporal
	case strings.Contains(base, "int"):
		return affinityInteger
	case strings.Contains(base, "char") || strings.Contains(base, "text") || strings.Contains(base, "clob"):
		return affinityString
	case strings.Contains(base, "blob"):
		return affinityBinary
	case strings.Contains(base, "real") || strings.Contains(base, "floa") || strings.Contains(base, "doub"):
		return affinityFloat
	default:
		return affinityOther
	}
}
