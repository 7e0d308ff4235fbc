package database

// IndexKind classifies an index by the guarantee it gives.
type IndexKind int

const (
	IndexPlain IndexKind = iota
	IndexUnique
	IndexPrimary
)

func (k IndexKind) String() string {
	switch k {
	case IndexPrimary:
		return "primary"
	case IndexUnique:
		return "unique"
	default:
		return "index"
	}
}

// Priority orders kinds for key classification; higher wins.
func (k IndexKind) Priority() int {
	return int(k)
}

// MarshalText encodes the kind by name so descriptors serialize readably.
func (k IndexKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (k *IndexKind) UnmarshalText(b []byte) error {
	*k = ParseIndexKind(string(b))
	return nil
}

// ParseIndexKind maps "primary" and "unique" to their kinds; anything else is plain.
func ParseIndexKind(s string) IndexKind {
	switch s {
	case "primary", "PRIMARY":
		return IndexPrimary
	case "unique", "UNIQUE":
		return IndexUnique
	default:
		return IndexPlain
	}
}

// Column describes a single column as reported by a backend.
type Column struct {
	Name          string  `json:"name" yaml:"name"`
	Type          string  `json:"type" yaml:"type"`       // semantic type: integer, string, datetime, …
	DBType        string  `json:"db_type" yaml:"db_type"` // backend token: int4, varchar(255), …
	Nullable      bool    `json:"nullable" yaml:"nullable"`
	Default       *string `json:"default,omitempty" yaml:"default,omitempty"`
	Length        *int    `json:"length,omitempty" yaml:"length,omitempty"`
	Precision     *int    `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale         *int    `json:"scale,omitempty" yaml:"scale,omitempty"`
	Unsigned      bool    `json:"unsigned" yaml:"unsigned"`
	AutoIncrement bool    `json:"autoincrement" yaml:"autoincrement"`
	Comment       string  `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Index describes one index and the ordered columns it covers.
type Index struct {
	Name    string    `json:"name" yaml:"name"`
	Columns []string  `json:"columns" yaml:"columns"`
	Kind    IndexKind `json:"type" yaml:"type"`
}

// ForeignKey describes a relationship from local columns to another table.
type ForeignKey struct {
	Name       string   `json:"name" yaml:"name"`
	Columns    []string `json:"columns" yaml:"columns"`
	RefTable   string   `json:"ref_table" yaml:"ref_table"`
	RefColumns []string `json:"ref_columns" yaml:"ref_columns"`
	OnDelete   string   `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	OnUpdate   string   `json:"on_update,omitempty" yaml:"on_update,omitempty"`
}

// ColumnSpec is one column of a TableSpec. Type is a semantic type name.
type ColumnSpec struct {
	Name          string  `json:"name" yaml:"name"`
	Type          string  `json:"type" yaml:"type"`
	Length        int     `json:"length,omitempty" yaml:"length,omitempty"`
	Precision     int     `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale         int     `json:"scale,omitempty" yaml:"scale,omitempty"`
	Nullable      bool    `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Default       *string `json:"default,omitempty" yaml:"default,omitempty"`
	AutoIncrement bool    `json:"autoincrement,omitempty" yaml:"autoincrement,omitempty"`
}

// TableSpec is a backend-neutral table definition handed to CreateTable.
type TableSpec struct {
	Name        string       `json:"name" yaml:"name"`
	Columns     []ColumnSpec `json:"columns" yaml:"columns"`
	PrimaryKey  []string     `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Indexes     []Index      `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
}
