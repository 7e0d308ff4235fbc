package schema

import "github.com/koustreak/schemaroute/internal/database"

// Key classification tokens.
const (
	KeyPrimary  = "PRI"
	KeyUnique   = "UNI"
	KeyMultiple = "MUL"
)

// IndexDescriptor is the serialized form of a covering index.
type IndexDescriptor struct {
	Name    string             `json:"name" yaml:"name"`
	Columns []string           `json:"columns" yaml:"columns"`
	Type    database.IndexKind `json:"type" yaml:"type"`
}

// ColumnDescriptor is the flattened, externally consumable description of
// one column.
type ColumnDescriptor struct {
	Field         string            `json:"field" yaml:"field"`
	Name          string            `json:"name" yaml:"name"`
	Type          string            `json:"type" yaml:"type"`
	DBType        string            `json:"db_type" yaml:"db_type"`
	Nullable      bool              `json:"nullable" yaml:"nullable"`
	Default       *string           `json:"default,omitempty" yaml:"default,omitempty"`
	Length        *int              `json:"length,omitempty" yaml:"length,omitempty"`
	Precision     *int              `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale         *int              `json:"scale,omitempty" yaml:"scale,omitempty"`
	Unsigned      bool              `json:"unsigned" yaml:"unsigned"`
	AutoIncrement bool              `json:"autoincrement" yaml:"autoincrement"`
	Comment       string            `json:"comment,omitempty" yaml:"comment,omitempty"`
	Indexes       []IndexDescriptor `json:"indexes" yaml:"indexes"`
	Key           string            `json:"key,omitempty" yaml:"key,omitempty"`
}
