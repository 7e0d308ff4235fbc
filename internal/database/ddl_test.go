package database

import (
	"testing"

	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func usersSpec() TableSpec {
	return TableSpec{
		Name: "users",
		Columns: []ColumnSpec{
			{Name: "id", Type: "integer", AutoIncrement: true},
			{Name: "email", Type: "string", Length: 120},
			{Name: "team_id", Type: "bigint", Nullable: true},
			{Name: "active", Type: "boolean", Default: strPtr("true")},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "users_email_unique", Columns: []string{"email"}, Kind: IndexUnique},
			{Columns: []string{"team_id"}, Kind: IndexPlain},
		},
		ForeignKeys: []ForeignKey{
			{Name: "users_team_fk", Columns: []string{"team_id"}, RefTable: "teams", RefColumns: []string{"id"}, OnDelete: "cascade"},
		},
	}
}

func TestCreateTable_Postgres(t *testing.T) {
	stmts, err := CreateTable(usersSpec(), DialectPostgres).Build()
	require.NoError(t, err)
	require.Len(t, stmts, 3)

	assert.Equal(t, `CREATE TABLE "users" (
  "id" SERIAL NOT NULL,
  "email" VARCHAR(120) NOT NULL,
  "team_id" BIGINT,
  "active" BOOLEAN NOT NULL DEFAULT true,
  PRIMARY KEY ("id"),
  CONSTRAINT "users_team_fk" FOREIGN KEY ("team_id") REFERENCES "teams" ("id") ON DELETE CASCADE
)`, stmts[0])
	assert.Equal(t, `CREATE UNIQUE INDEX "users_email_unique" ON "users" ("email")`, stmts[1])
	assert.Equal(t, `CREATE INDEX "idx_users_team_id" ON "users" ("team_id")`, stmts[2])
}

func TestCreateTable_MySQL(t *testing.T) {
	stmts, err := CreateTable(usersSpec(), DialectMySQL).Build()
	require.NoError(t, err)

	assert.Contains(t, stmts[0], "CREATE TABLE `users`")
	assert.Contains(t, stmts[0], "`id` INT NOT NULL AUTO_INCREMENT")
	assert.Contains(t, stmts[0], "`active` TINYINT(1) NOT NULL DEFAULT true")
	assert.Contains(t, stmts[0], "PRIMARY KEY (`id`)")
}

func TestCreateTable_SQLiteInlineAutoincrement(t *testing.T) {
	stmts, err := CreateTable(usersSpec(), DialectSQLite).Build()
	require.NoError(t, err)

	assert.Contains(t, stmts[0], `"id" INTEGER PRIMARY KEY AUTOINCREMENT`)
	assert.NotContains(t, stmts[0], "PRIMARY KEY (")
}

func TestCreateTable_PrimaryKeyFromIndex(t *testing.T) {
	spec := TableSpec{
		Name:    "tags",
		Columns: []ColumnSpec{{Name: "slug", Type: "string"}},
		Indexes: []Index{{Name: "PRIMARY", Columns: []string{"slug"}, Kind: IndexPrimary}},
	}

	stmts, err := CreateTable(spec, DialectPostgres).Build()
	require.NoError(t, err)
	require.Len(t, stmts, 1, "primary indexes are not emitted as CREATE INDEX")
	assert.Contains(t, stmts[0], `PRIMARY KEY ("slug")`)
}

func TestCreateTable_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec TableSpec
	}{
		{"no name", TableSpec{Columns: []ColumnSpec{{Name: "id", Type: "integer"}}}},
		{"no columns", TableSpec{Name: "t"}},
		{"duplicate column", TableSpec{Name: "t", Columns: []ColumnSpec{{Name: "a", Type: "integer"}, {Name: "a", Type: "text"}}}},
		{"unknown pk column", TableSpec{Name: "t", Columns: []ColumnSpec{{Name: "a", Type: "integer"}}, PrimaryKey: []string{"b"}}},
		{"unknown type", TableSpec{Name: "t", Columns: []ColumnSpec{{Name: "a", Type: "geometry"}}}},
		{"fk arity", TableSpec{
			Name:        "t",
			Columns:     []ColumnSpec{{Name: "a", Type: "integer"}},
			ForeignKeys: []ForeignKey{{Name: "fk", Columns: []string{"a"}, RefTable: "u"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateTable(tt.spec, DialectMySQL).Build()
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
		})
	}
}

func TestDialect_Quote(t *testing.T) {
	assert.Equal(t, `"we""ird"`, DialectPostgres.Quote(`we"ird`))
	assert.Equal(t, "`we``ird`", DialectMySQL.Quote("we`ird"))
	assert.Equal(t, "$3", DialectPostgres.Placeholder(3))
	assert.Equal(t, "?", DialectSQLite.Placeholder(3))
}

func TestDialect_Placeholders(t *testing.T) {
	assert.Equal(t, "$1, $2, $3", DialectPostgres.Placeholders(3))
	assert.Equal(t, "?, ?", DialectMySQL.Placeholders(2))
	assert.Equal(t, "?", DialectSQLite.Placeholders(1))
	assert.Empty(t, DialectSQLite.Placeholders(0))
}
