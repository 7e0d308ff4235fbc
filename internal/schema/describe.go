package schema

import "github.com/koustreak/schemaroute/internal/database"

// KeyToken encodes an index kind as its three-letter key classification.
func KeyToken(kind database.IndexKind) string {
	switch kind {
	case database.IndexPrimary:
		return KeyPrimary
	case database.IndexUnique:
		return KeyUnique
	default:
		return KeyMultiple
	}
}

// Describe flattens t into one descriptor per column, in native order.
// Key comes from the highest-priority covering index and is empty for
// columns no index covers.
func Describe(t *Table) []ColumnDescriptor {
	out := make([]ColumnDescriptor, 0, len(t.Columns))
	for _, c := range t.Columns {
		d := ColumnDescriptor{
			Field:         c.Name,
			Name:          c.Name,
			Type:          c.Type,
			DBType:        c.DBType,
			Nullable:      c.Nullable,
			Default:       c.Default,
			Length:        c.Length,
			Precision:     c.Precision,
			Scale:         c.Scale,
			Unsigned:      c.Unsigned,
			AutoIncrement: c.AutoIncrement,
			Comment:       c.Comment,
			Indexes:       []IndexDescriptor{},
		}

		covering := t.CoveringIndexes(c.Name)
		for _, idx := range covering {
			d.Indexes = append(d.Indexes, IndexDescriptor{
				Name:    idx.Name,
				Columns: append([]string(nil), idx.Columns...),
				Type:    idx.Kind,
			})
		}
		if len(covering) > 0 {
			d.Key = KeyToken(covering[0].Kind)
		}
		out = append(out, d)
	}
	return out
}
