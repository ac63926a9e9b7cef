package describe

import (
	tabledesc "github.com/shibukawa/tabledesc"
)

// buildDescription merges normalized catalog rows with shadow constraint
// entries into the final description. The merge is pure: no queries, no
// mutation of its inputs, and the column order is the catalog's ordinal
// order. Shadow entries that match no live column are skipped; catalog
// columns without a shadow entry pass through untouched.
func buildDescription(dialect tabledesc.Dialect, ident tabledesc.TableIdentifier, rows []rawColumn, shadow []tabledesc.ConstraintEntry) *tabledesc.TableDescription {
	desc := &tabledesc.TableDescription{
		Table:   ident.Table,
		Schema:  ident.Schema,
		Dialect: dialect,
		Columns: make([]*tabledesc.ColumnDescription, 0, len(rows)),
	}

	byColumn := make(map[string]tabledesc.ConstraintEntry, len(shadow))
	for _, entry := range shadow {
		byColumn[entry.Column] = entry
	}

	for _, row := range rows {
		col := &tabledesc.ColumnDescription{
			Name:          row.name,
			Type:          row.dataType,
			AllowNull:     row.nullable,
			Default:       normalizeDefault(dialect, row),
			PrimaryKey:    row.primaryKey,
			AutoIncrement: row.autoIncrement,
			Comment:       row.comment,
			EnumValues:    row.enumValues,
		}

		if entry, ok := byColumn[row.name]; ok {
			col.Unique = entry.Unique
			if entry.References != nil {
				ref := *entry.References
				col.References = &ref
			}
		}

		desc.Columns = append(desc.Columns, col)
	}

	return desc
}
